package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Kenshin-api/internal/application/dto"
	"github.com/jhoicas/Kenshin-api/internal/domain"
	calc "github.com/jhoicas/Kenshin-api/internal/domain/billing"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
	"github.com/jhoicas/Kenshin-api/internal/observability/metrics"
)

// Origen del cálculo, usado como label de métricas.
const (
	SourceAPI   = "api"
	SourceMeter = "meter"
)

// BillingUseCase cálculo manual de facturación y consultas del historial.
type BillingUseCase struct {
	repo     repository.BillingRepository
	rates    RateSource
	defaults calc.Defaults
	log      zerolog.Logger
	now      func() time.Time
}

// NewBillingUseCase construye el caso de uso.
func NewBillingUseCase(repo repository.BillingRepository, rates RateSource, defaults calc.Defaults, log zerolog.Logger) *BillingUseCase {
	return &BillingUseCase{repo: repo, rates: rates, defaults: defaults, log: log, now: time.Now}
}

// Compute arma el BillingData a partir de las lecturas recibidas, calcula los cargos con
// las tarifas vigentes y lo guarda en el historial. readerName es el lector autenticado.
func (uc *BillingUseCase) Compute(ctx context.Context, in dto.ComputeBillingRequest, readerName string) (*dto.ComputeBillingResponse, error) {
	serial := strings.TrimSpace(in.SerialID)
	if serial == "" {
		return nil, fmt.Errorf("%w: serial_id requerido", domain.ErrInvalidInput)
	}
	now := uc.now()

	b := entity.BillingData{
		Period:       in.Period,
		PeriodFrom:   in.PeriodFrom,
		PeriodTo:     in.PeriodTo,
		Commercial:   in.Commercial,
		SerialID:     serial,
		Multiplier:   in.Multiplier,
		PresReading:  in.PresReading,
		PrevReading:  in.PrevReading,
		MaxDemand:    in.MaxDemand,
		Discount:     in.Discount,
		Interest:     in.Interest,
		DueDate:      in.DueDate,
		DiscoDate:    in.DiscoDate,
		Reader:       readerName,
		ReadDatetime: calc.NowDate(now),
		Version:      uc.defaults.Version,
	}
	if b.Commercial == "" {
		b.Commercial = uc.defaults.Commercial
	}
	if b.Reader == "" {
		b.Reader = uc.defaults.Reader
	}

	rates := uc.rates.Current()
	warnings := calc.Calculate(&b, rates)
	for _, w := range warnings {
		uc.log.Warn().Str("serial", serial).Msg(string(w))
	}

	saved := &entity.SavedBilling{Billing: b, Rates: rates, Timestamp: now}
	if err := uc.repo.Save(ctx, saved); err != nil {
		metrics.BillingComputed(SourceAPI, metrics.ResultError, len(warnings))
		return nil, fmt.Errorf("guardar facturación: %w", err)
	}
	metrics.BillingComputed(SourceAPI, metrics.ResultSuccess, len(warnings))
	uc.log.Info().Str("serial", serial).Str("total", b.TotalAmount.Decimal.StringFixed(2)).Msg("facturación calculada")

	return &dto.ComputeBillingResponse{
		ID:       saved.ID,
		Billing:  ToBillingDTO(b),
		RateType: rates.RateType,
		Warnings: warningStrings(warnings),
	}, nil
}

// Latest último registro del medidor; domain.ErrNotFound si no tiene historial.
func (uc *BillingUseCase) Latest(ctx context.Context, serialID string) (*dto.SavedBillingResponse, error) {
	saved, err := uc.repo.Latest(ctx, serialID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, domain.ErrNotFound
	}
	out := toSavedResponse(saved, uc.now())
	return &out, nil
}

// History página del historial, del más reciente al más antiguo.
func (uc *BillingUseCase) History(ctx context.Context, serialID string, page dto.PageRequest) (*dto.HistoryResponse, error) {
	page.DefaultPage()
	all, err := uc.repo.History(ctx, serialID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	items := make([]dto.SavedBillingResponse, 0, page.Limit)
	for i := len(all) - 1 - page.Offset; i >= 0 && len(items) < page.Limit; i-- {
		items = append(items, toSavedResponse(all[i], now))
	}
	return &dto.HistoryResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(all)},
	}, nil
}

// Summary resumen del historial; domain.ErrNotFound si no hay registros.
func (uc *BillingUseCase) Summary(ctx context.Context, serialID string) (*dto.SummaryResponse, error) {
	s, err := uc.repo.Summary(ctx, serialID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSummaryResponse(s), nil
}

// ListMeters medidores con historial guardado.
func (uc *BillingUseCase) ListMeters(ctx context.Context) (*dto.MetersResponse, error) {
	serials, err := uc.repo.ListSerials(ctx)
	if err != nil {
		return nil, err
	}
	if serials == nil {
		serials = []string{}
	}
	return &dto.MetersResponse{Meters: serials}, nil
}

// Clear borra el historial del medidor; domain.ErrNotFound si no existe.
func (uc *BillingUseCase) Clear(ctx context.Context, serialID string) error {
	has, err := uc.repo.Has(ctx, serialID)
	if err != nil {
		return err
	}
	if !has {
		return domain.ErrNotFound
	}
	return uc.repo.Clear(ctx, serialID)
}

// ClearAll borra el historial de todos los medidores.
func (uc *BillingUseCase) ClearAll(ctx context.Context) error {
	return uc.repo.ClearAll(ctx)
}
