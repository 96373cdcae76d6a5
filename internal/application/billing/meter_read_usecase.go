package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Kenshin-api/internal/application/dto"
	"github.com/jhoicas/Kenshin-api/internal/domain"
	calc "github.com/jhoicas/Kenshin-api/internal/domain/billing"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/export"
	"github.com/jhoicas/Kenshin-api/internal/observability/metrics"
)

// MeterReadUseCase lee el perfil de facturación de un medidor por DLMS y guarda el resultado.
type MeterReadUseCase struct {
	opener   SessionOpener
	repo     repository.BillingRepository
	rates    RateSource
	sink     FileSink // nil: no se escriben archivos
	defaults calc.Defaults
	log      zerolog.Logger
	now      func() time.Time
}

// NewMeterReadUseCase construye el caso de uso; sink puede ser nil.
func NewMeterReadUseCase(
	opener SessionOpener,
	repo repository.BillingRepository,
	rates RateSource,
	sink FileSink,
	defaults calc.Defaults,
	log zerolog.Logger,
) *MeterReadUseCase {
	return &MeterReadUseCase{
		opener:   opener,
		repo:     repo,
		rates:    rates,
		sink:     sink,
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

// ReadMeter abre la sesión, lee los dos últimos registros de facturación y la libera.
// Con los registros arma el BillingData del periodo, lo persiste y escribe el JSON del mes
// y el CSV de la lectura.
//
// Retorna:
//   - domain.ErrInvalidInput        si falta el serial.
//   - domain.ErrDeviceUnavailable   si la sesión no se pudo construir.
//   - domain.ErrInsufficientRecords si el medidor reporta menos de dos registros, o si
//     sin cantidad conocida no responde el registro 2.
func (uc *MeterReadUseCase) ReadMeter(ctx context.Context, in dto.ReadMeterRequest, readerName string) (resp *dto.ReadMeterResponse, err error) {
	serial := strings.TrimSpace(in.SerialID)
	if serial == "" {
		return nil, fmt.Errorf("%w: serial_id requerido", domain.ErrInvalidInput)
	}
	start := uc.now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveMeterRead(start, result)
	}()

	log := uc.log.With().Str("serial", serial).Logger()

	// ── 1. Sesión ─────────────────────────────────────────────────────────────
	sess, err := uc.opener.Open(ctx, serial)
	if err != nil {
		log.Warn().Err(err).Msg("sesión DLMS no disponible")
		if errors.Is(err, domain.ErrDeviceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	defer func() {
		if cErr := sess.Close(); cErr != nil {
			log.Debug().Err(cErr).Msg("cerrar transporte")
		}
	}()

	if err := sess.Establish(ctx); err != nil {
		return nil, fmt.Errorf("establecer asociación: %w", err)
	}

	// ── 2. Registros ──────────────────────────────────────────────────────────
	// El perfil es 1-based: nunca se pide el índice 0.
	var warnings []string
	count, err := sess.ReadBillingCount(ctx)
	fallback := err != nil
	switch {
	case fallback:
		log.Warn().Err(err).Msg("cantidad de registros no disponible, se leen los dos primeros")
		warnings = append(warnings, "cantidad de registros no disponible")
		count = 2
	case count < 2:
		log.Warn().Int("count", count).Msg("el medidor no tiene dos registros de facturación")
		return nil, fmt.Errorf("%w: el medidor reporta %d", domain.ErrInsufficientRecords, count)
	}
	prev, err := sess.ReadBillingRecord(ctx, count-1)
	if err != nil {
		return nil, fmt.Errorf("leer registro %d: %w", count-1, err)
	}
	cur, err := sess.ReadBillingRecord(ctx, count)
	if err != nil {
		if fallback {
			return nil, fmt.Errorf("%w: leer registro %d: %v", domain.ErrInsufficientRecords, count, err)
		}
		return nil, fmt.Errorf("leer registro %d: %w", count, err)
	}
	records := []entity.MeterRecord{prev, cur}

	// ── 3. Operaciones opcionales ─────────────────────────────────────────────
	now := uc.now()
	if in.SyncClock {
		if err := sess.SetClock(ctx, now); err != nil {
			log.Warn().Err(err).Msg("ajuste de reloj fallido")
			warnings = append(warnings, "ajuste de reloj fallido: "+err.Error())
		}
	}
	if in.DemandReset {
		if err := sess.DemandReset(ctx); err != nil {
			log.Warn().Err(err).Msg("reset de demanda fallido")
			warnings = append(warnings, "reset de demanda fallido: "+err.Error())
		}
	}

	if err := sess.Release(ctx); err != nil {
		log.Warn().Err(err).Msg("liberar asociación")
	}

	// ── 4. Facturación ────────────────────────────────────────────────────────
	defaults := uc.defaults
	if readerName != "" {
		defaults.Reader = readerName
	}
	rates := uc.rates.Current()
	bills, calcWarnings, err := calc.BuildFromRecords(serial, records, rates, defaults, now)
	if err != nil {
		metrics.BillingComputed(SourceMeter, metrics.ResultError, 0)
		return nil, err
	}
	metrics.BillingComputed(SourceMeter, metrics.ResultSuccess, len(calcWarnings))
	warnings = append(warnings, warningStrings(calcWarnings)...)

	for i := range bills {
		if err := uc.repo.Save(ctx, &entity.SavedBilling{Billing: bills[i], Rates: rates, Timestamp: now}); err != nil {
			return nil, fmt.Errorf("guardar facturación: %w", err)
		}
	}

	// ── 5. Archivos ───────────────────────────────────────────────────────────
	files, err := uc.writeFiles(serial, records, bills, rates, now)
	if err != nil {
		log.Error().Err(err).Msg("escribir archivos de lectura")
		warnings = append(warnings, err.Error())
	}

	out := &dto.ReadMeterResponse{
		SerialID:    serial,
		RecordCount: count,
		Billing:     make([]dto.BillingDataDTO, len(bills)),
		Files:       files,
		Warnings:    warnings,
	}
	for i, b := range bills {
		out.Billing[i] = ToBillingDTO(b)
	}
	log.Info().Int("records", count).Msg("lectura completada")
	return out, nil
}

func (uc *MeterReadUseCase) writeFiles(
	serial string,
	records []entity.MeterRecord,
	bills []entity.BillingData,
	rates entity.RateTable,
	now time.Time,
) ([]string, error) {
	if uc.sink == nil {
		return nil, nil
	}
	jsonData, err := export.BillingJSON(bills)
	if err != nil {
		return nil, err
	}
	csvData, err := export.RecordsCSV(records, rates)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, f := range []struct {
		name string
		data []byte
	}{
		{export.JSONFileName(serial, now), jsonData},
		{export.CSVFileName(serial, export.KindBilling, now), csvData},
	} {
		path, err := uc.sink.Write(f.name, f.data)
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}
