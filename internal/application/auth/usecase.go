package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Kenshin-api/internal/application/dto"
	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
	"github.com/jhoicas/Kenshin-api/pkg/jwt"
)

const minPasswordLen = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación de lectores: registro y login.
type AuthUseCase struct {
	readerRepo repository.ReaderRepository
	jwtCfg     JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(readerRepo repository.ReaderRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{readerRepo: readerRepo, jwtCfg: jwtCfg}
}

// Register crea un lector: hashea password con bcrypt y persiste. Devuelve ErrUsernameTaken si el username ya existe.
func (uc *AuthUseCase) Register(in dto.RegisterRequest) (*dto.ReaderResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username requerido", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleReader
	}
	if role != entity.RoleReader && role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, role)
	}

	existing, err := uc.readerRepo.FindByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("buscar lector: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = username
	}
	reader := &entity.Reader{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.readerRepo.Create(reader); err != nil {
		return nil, err
	}
	return toReaderResponse(reader), nil
}

// Login verifica username/password, genera JWT y retorna token + lector.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	reader, err := uc.readerRepo.FindByUsername(strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reader.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if reader.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, reader.ID, reader.Name, reader.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:  token,
		Reader: *toReaderResponse(reader),
	}, nil
}

func toReaderResponse(r *entity.Reader) *dto.ReaderResponse {
	if r == nil {
		return nil
	}
	return &dto.ReaderResponse{
		ID:        r.ID,
		Username:  r.Username,
		Name:      r.Name,
		Role:      r.Role,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
