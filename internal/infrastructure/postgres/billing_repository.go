package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
)

var _ repository.BillingRepository = (*BillingRepo)(nil)

// BillingRepo historial de facturación en la tabla billing_records.
// El registro completo va en JSONB; lecturas y total se duplican en columnas NUMERIC para consultas.
type BillingRepo struct {
	q Querier
}

// NewBillingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillingRepository(q Querier) *BillingRepo {
	return &BillingRepo{q: q}
}

const billingColumns = `id, billing, rate_type, rates, recorded_at`

func (r *BillingRepo) Save(ctx context.Context, saved *entity.SavedBilling) error {
	if saved == nil || saved.Billing.SerialID == "" {
		return fmt.Errorf("%w: serial requerido", domain.ErrInvalidInput)
	}
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.Timestamp.IsZero() {
		saved.Timestamp = time.Now()
	}
	billingJSON, err := json.Marshal(saved.Billing)
	if err != nil {
		return fmt.Errorf("serializar facturación: %w", err)
	}
	ratesJSON, err := json.Marshal(saved.Rates.Slice())
	if err != nil {
		return fmt.Errorf("serializar tarifas: %w", err)
	}

	b := saved.Billing
	query := `
		INSERT INTO billing_records (id, serial_id, period, pres_reading, prev_reading, total_use, total_amount, billing, rate_type, rates, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(ctx, query,
		saved.ID, b.SerialID, nullIfEmpty(b.Period),
		b.PresReading, b.PrevReading, b.TotalUse, b.TotalAmount,
		billingJSON, saved.Rates.RateType, ratesJSON, saved.Timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert billing record: %w", err)
	}
	return nil
}

func (r *BillingRepo) Latest(ctx context.Context, serialID string) (*entity.SavedBilling, error) {
	query := `SELECT ` + billingColumns + ` FROM billing_records
		WHERE serial_id = $1 ORDER BY recorded_at DESC, id DESC LIMIT 1`
	saved, err := scanSaved(r.q.QueryRow(ctx, query, serialID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest billing: %w", err)
	}
	return saved, nil
}

func (r *BillingRepo) History(ctx context.Context, serialID string) ([]*entity.SavedBilling, error) {
	query := `SELECT ` + billingColumns + ` FROM billing_records
		WHERE serial_id = $1 ORDER BY recorded_at, id`
	rows, err := r.q.Query(ctx, query, serialID)
	if err != nil {
		return nil, fmt.Errorf("billing history: %w", err)
	}
	defer rows.Close()
	var list []*entity.SavedBilling
	for rows.Next() {
		saved, err := scanSaved(rows)
		if err != nil {
			return nil, fmt.Errorf("scan billing record: %w", err)
		}
		list = append(list, saved)
	}
	return list, rows.Err()
}

func (r *BillingRepo) ListSerials(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT serial_id FROM billing_records ORDER BY serial_id`)
	if err != nil {
		return nil, fmt.Errorf("list serials: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *BillingRepo) Summary(ctx context.Context, serialID string) (*entity.BillingSummary, error) {
	query := `
		SELECT count(*), min(recorded_at), max(recorded_at),
		       (SELECT period FROM billing_records WHERE serial_id = $1 ORDER BY recorded_at, id LIMIT 1),
		       (SELECT period FROM billing_records WHERE serial_id = $1 ORDER BY recorded_at DESC, id DESC LIMIT 1)
		FROM billing_records WHERE serial_id = $1`
	s := entity.BillingSummary{SerialID: serialID, Location: "billing_records"}
	var first, last *time.Time
	var firstPeriod, lastPeriod *string
	if err := r.q.QueryRow(ctx, query, serialID).Scan(&s.RecordCount, &first, &last, &firstPeriod, &lastPeriod); err != nil {
		return nil, fmt.Errorf("billing summary: %w", err)
	}
	if s.RecordCount == 0 {
		return nil, nil
	}
	s.FirstRecordAt, s.LastRecordAt = *first, *last
	s.FirstPeriod, s.LastPeriod = stringOrEmpty(firstPeriod), stringOrEmpty(lastPeriod)
	return &s, nil
}

func (r *BillingRepo) Has(ctx context.Context, serialID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM billing_records WHERE serial_id = $1)`, serialID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has billing: %w", err)
	}
	return exists, nil
}

func (r *BillingRepo) Clear(ctx context.Context, serialID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM billing_records WHERE serial_id = $1`, serialID); err != nil {
		return fmt.Errorf("clear billing: %w", err)
	}
	return nil
}

func (r *BillingRepo) ClearAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM billing_records`); err != nil {
		return fmt.Errorf("clear all billing: %w", err)
	}
	return nil
}

func scanSaved(row pgx.Row) (*entity.SavedBilling, error) {
	var (
		saved       entity.SavedBilling
		billingJSON []byte
		ratesJSON   []byte
		rateType    string
	)
	if err := row.Scan(&saved.ID, &billingJSON, &rateType, &ratesJSON, &saved.Timestamp); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(billingJSON, &saved.Billing); err != nil {
		return nil, fmt.Errorf("billing json: %w", err)
	}
	var rates []decimal.Decimal
	if err := json.Unmarshal(ratesJSON, &rates); err != nil {
		return nil, fmt.Errorf("rates json: %w", err)
	}
	table, ok := entity.RateTableFromSlice(rates, rateType)
	if !ok {
		return nil, fmt.Errorf("rates json: %d tarifas", len(rates))
	}
	saved.Rates = table
	return &saved, nil
}
