package billing

import (
	"context"
	"time"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// RateSource tabla de tarifas vigente (rate.csv o valores por defecto).
type RateSource interface {
	Current() entity.RateTable
	UsingDefaults() bool
	Store(data []byte) (entity.RateTable, error)
}

// Uploader sube una exportación y devuelve una URL de descarga.
type Uploader interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

// FileSink escribe los archivos generados por una lectura y devuelve su ubicación.
type FileSink interface {
	Write(name string, data []byte) (string, error)
}

// MeterSession operaciones sobre una sesión DLMS ya construida.
type MeterSession interface {
	Establish(ctx context.Context) error
	ReadBillingCount(ctx context.Context) (int, error)
	ReadBillingRecord(ctx context.Context, index int) (entity.MeterRecord, error)
	SetClock(ctx context.Context, now time.Time) error
	DemandReset(ctx context.Context) error
	Release(ctx context.Context) error
	Close() error
}

// SessionOpener conecta con un medidor y construye su sesión.
// Los fallos de construcción se informan envolviendo domain.ErrDeviceUnavailable.
type SessionOpener interface {
	Open(ctx context.Context, serialID string) (MeterSession, error)
}

// OpenerFunc adapta una función al puerto SessionOpener.
type OpenerFunc func(ctx context.Context, serialID string) (MeterSession, error)

func (f OpenerFunc) Open(ctx context.Context, serialID string) (MeterSession, error) {
	return f(ctx, serialID)
}
