package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
)

var _ repository.ReaderRepository = (*ReaderRepo)(nil)

// ReaderRepo implementación del puerto ReaderRepository sobre PostgreSQL.
type ReaderRepo struct {
	q Querier
}

// NewReaderRepository construye el adaptador de persistencia para lectores.
func NewReaderRepository(q Querier) *ReaderRepo {
	return &ReaderRepo{q: q}
}

// Create persiste un nuevo lector.
func (r *ReaderRepo) Create(reader *entity.Reader) error {
	query := `
		INSERT INTO readers (id, username, password_hash, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		reader.ID, reader.Username, reader.PasswordHash, reader.Name, reader.Role, reader.Status,
		reader.CreatedAt, reader.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert reader: %w", err)
	}
	return nil
}

// GetByID obtiene un lector por ID; (nil, nil) si no existe.
func (r *ReaderRepo) GetByID(id string) (*entity.Reader, error) {
	return r.findOne(`WHERE id = $1`, id)
}

// FindByUsername obtiene un lector por nombre de usuario; (nil, nil) si no existe.
func (r *ReaderRepo) FindByUsername(username string) (*entity.Reader, error) {
	return r.findOne(`WHERE username = $1`, username)
}

func (r *ReaderRepo) findOne(where string, arg string) (*entity.Reader, error) {
	query := `
		SELECT id, username, password_hash, name, role, status, created_at, updated_at
		FROM readers ` + where
	var u entity.Reader
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reader: %w", err)
	}
	return &u, nil
}
