package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
)

var _ repository.ReaderRepository = (*ReaderRepository)(nil)

// ReaderRepository guarda los lectores en un único readers.json.
type ReaderRepository struct {
	path string
	mu   sync.Mutex
}

// NewReaderRepository crea el repositorio en dir/readers.json.
func NewReaderRepository(dir string) *ReaderRepository {
	return &ReaderRepository{path: filepath.Join(dir, "readers.json")}
}

func (r *ReaderRepository) load() ([]entity.Reader, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer lectores: %w", err)
	}
	var readers []entity.Reader
	if err := json.Unmarshal(data, &readers); err != nil {
		return nil, fmt.Errorf("decodificar lectores: %w", err)
	}
	return readers, nil
}

// Create agrega el lector; el username es único sin distinguir mayúsculas.
func (r *ReaderRepository) Create(reader *entity.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	readers, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range readers {
		if strings.EqualFold(existing.Username, reader.Username) {
			return domain.ErrUsernameTaken
		}
	}
	readers = append(readers, *reader)

	data, err := json.MarshalIndent(readers, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("crear directorio de lectores: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("escribir lectores: %w", err)
	}
	return os.Rename(tmp, r.path)
}

// GetByID (nil, nil) si no existe.
func (r *ReaderRepository) GetByID(id string) (*entity.Reader, error) {
	return r.find(func(rd entity.Reader) bool { return rd.ID == id })
}

// FindByUsername (nil, nil) si no existe.
func (r *ReaderRepository) FindByUsername(username string) (*entity.Reader, error) {
	return r.find(func(rd entity.Reader) bool { return strings.EqualFold(rd.Username, username) })
}

func (r *ReaderRepository) find(match func(entity.Reader) bool) (*entity.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	readers, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range readers {
		if match(readers[i]) {
			return &readers[i], nil
		}
	}
	return nil, nil
}
