package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("lector no encontrado")
	ErrUsernameTaken       = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInsufficientRecords = errors.New("registros de facturación insuficientes")
	ErrDeviceUnavailable   = errors.New("sesión DLMS no disponible")
)
