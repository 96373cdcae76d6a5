package repository

import (
	"context"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// BillingRepository define el puerto de persistencia del historial de facturación por medidor.
// Latest y Summary devuelven (nil, nil) cuando el medidor no tiene registros.
type BillingRepository interface {
	Save(ctx context.Context, saved *entity.SavedBilling) error
	Latest(ctx context.Context, serialID string) (*entity.SavedBilling, error)
	History(ctx context.Context, serialID string) ([]*entity.SavedBilling, error)
	ListSerials(ctx context.Context) ([]string, error)
	Summary(ctx context.Context, serialID string) (*entity.BillingSummary, error)
	Has(ctx context.Context, serialID string) (bool, error)
	Clear(ctx context.Context, serialID string) error
	ClearAll(ctx context.Context) error
}
