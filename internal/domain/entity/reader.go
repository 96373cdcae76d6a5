package entity

import "time"

// Roles válidos para Reader.
const (
	RoleAdmin  = "admin"
	RoleReader = "reader"
)

// Reader representa un lector de medidores (usuario del sistema).
type Reader struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string // nombre impreso en el recibo
	Role         string // admin, reader
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
