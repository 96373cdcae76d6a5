package repository

import "github.com/jhoicas/Kenshin-api/internal/domain/entity"

// ReaderRepository define el puerto de persistencia para lectores (DIP).
type ReaderRepository interface {
	Create(reader *entity.Reader) error
	GetByID(id string) (*entity.Reader, error)
	FindByUsername(username string) (*entity.Reader, error)
}
