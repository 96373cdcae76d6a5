package billing

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/Kenshin-api/internal/application/dto"
	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/ratefile"
)

// maxRateFileSize límite del rate.csv recibido por la API.
const maxRateFileSize = 1 << 20

// RateUseCase consulta, valida y reemplaza la tabla de tarifas.
type RateUseCase struct {
	rates RateSource
}

func NewRateUseCase(rates RateSource) *RateUseCase {
	return &RateUseCase{rates: rates}
}

// Current tabla vigente con etiquetas.
func (uc *RateUseCase) Current() dto.RatesResponse {
	return toRatesResponse(uc.rates.Current(), uc.rates.UsingDefaults())
}

// Validate revisa un rate.csv sin aplicarlo.
func (uc *RateUseCase) Validate(r io.Reader) dto.RateValidationResponse {
	return toValidationResponse(ratefile.Validate(io.LimitReader(r, maxRateFileSize)))
}

// Replace valida el archivo y, si no tiene errores, lo guarda como tabla vigente.
// Un archivo inválido devuelve domain.ErrInvalidInput con el detalle de los errores.
func (uc *RateUseCase) Replace(r io.Reader) (dto.RatesResponse, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxRateFileSize+1))
	if err != nil {
		return dto.RatesResponse{}, fmt.Errorf("leer rate.csv: %w", err)
	}
	if len(data) > maxRateFileSize {
		return dto.RatesResponse{}, fmt.Errorf("%w: rate.csv supera %d bytes", domain.ErrInvalidInput, maxRateFileSize)
	}
	res := ratefile.Validate(bytes.NewReader(data))
	if !res.Valid {
		return dto.RatesResponse{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(res.Errors, "; "))
	}
	table, err := uc.rates.Store(data)
	if err != nil {
		return dto.RatesResponse{}, err
	}
	return toRatesResponse(table, false), nil
}

func toRatesResponse(t entity.RateTable, defaults bool) dto.RatesResponse {
	rates := make([]dto.RateDTO, entity.RateCount)
	for i := range t.Rates {
		rates[i] = dto.RateDTO{Index: i, Label: entity.RateLabels[i], Value: t.Rates[i]}
	}
	return dto.RatesResponse{RateType: t.RateType, UsingDefaults: defaults, Rates: rates}
}

func toValidationResponse(r ratefile.ValidationResult) dto.RateValidationResponse {
	return dto.RateValidationResponse{
		Valid:     r.Valid,
		RateType:  r.RateType,
		RateCount: r.RateCount,
		Summary:   r.Summary(),
		Errors:    r.Errors,
		Warnings:  r.Warnings,
	}
}
