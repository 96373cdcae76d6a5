package billing_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/application/dto"
	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

func newBillingUC(t *testing.T) *billing.BillingUseCase {
	t.Helper()
	return billing.NewBillingUseCase(newRepo(t), newRates(t), defaults, zerolog.Nop())
}

func computeReq(serial, period string) dto.ComputeBillingRequest {
	return dto.ComputeBillingRequest{
		SerialID:    serial,
		Period:      period,
		PresReading: entity.Dec(1100),
		PrevReading: entity.Dec(1000),
		MaxDemand:   entity.Dec(5),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Compute
// ──────────────────────────────────────────────────────────────────────────────

func TestCompute_CalculaYGuarda(t *testing.T) {
	uc := newBillingUC(t)
	ctx := context.Background()

	resp, err := uc.Compute(ctx, computeReq("SN-1", "February 2024"), "Ana")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "100", resp.Billing.TotalUse.Decimal.String())
	assert.Equal(t, "1581.91", resp.Billing.TotalAmount.Decimal.StringFixed(2))
	assert.Equal(t, "LARGE", resp.Billing.Commercial)
	assert.Equal(t, "Ana", resp.Billing.Reader)
	assert.Equal(t, entity.DefaultRateType, resp.RateType)
	assert.Empty(t, resp.Warnings)

	latest, err := uc.Latest(ctx, "SN-1")
	require.NoError(t, err)
	assert.Equal(t, resp.ID, latest.ID)
	assert.True(t, latest.Valid)
	assert.Len(t, latest.Rates, entity.RateCount)
}

func TestCompute_AusentesGeneranAdvertencias(t *testing.T) {
	uc := newBillingUC(t)

	resp, err := uc.Compute(context.Background(), dto.ComputeBillingRequest{SerialID: "SN-1"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Warnings)
	assert.Equal(t, "0", resp.Billing.TotalUse.Decimal.String())
	assert.False(t, resp.Billing.MaxDemand.Valid, "el ausente no se convierte en cero")
	assert.Equal(t, defaults.Reader, resp.Billing.Reader)
}

func TestCompute_SerialVacio(t *testing.T) {
	uc := newBillingUC(t)

	_, err := uc.Compute(context.Background(), dto.ComputeBillingRequest{SerialID: " "}, "Ana")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestLatest_SinHistorial(t *testing.T) {
	uc := newBillingUC(t)

	_, err := uc.Latest(context.Background(), "SN-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory_PaginaDelMasReciente(t *testing.T) {
	uc := newBillingUC(t)
	ctx := context.Background()
	for _, p := range []string{"January 2024", "February 2024", "March 2024"} {
		_, err := uc.Compute(ctx, computeReq("SN-1", p), "Ana")
		require.NoError(t, err)
	}

	page, err := uc.History(ctx, "SN-1", dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Page.Total)
	assert.Equal(t, "March 2024", page.Items[0].Billing.Period)
	assert.Equal(t, "February 2024", page.Items[1].Billing.Period)

	rest, err := uc.History(ctx, "SN-1", dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "January 2024", rest.Items[0].Billing.Period)
}

func TestSummaryYListMeters(t *testing.T) {
	uc := newBillingUC(t)
	ctx := context.Background()
	_, err := uc.Compute(ctx, computeReq("SN-2", "January 2024"), "Ana")
	require.NoError(t, err)
	_, err = uc.Compute(ctx, computeReq("SN-1", "February 2024"), "Ana")
	require.NoError(t, err)

	meters, err := uc.ListMeters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SN-1", "SN-2"}, meters.Meters)

	s, err := uc.Summary(ctx, "SN-1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.RecordCount)
	assert.Equal(t, "February 2024 to February 2024", s.PeriodRange)

	_, err = uc.Summary(ctx, "SN-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMeters_VacioNoEsNil(t *testing.T) {
	uc := newBillingUC(t)

	meters, err := uc.ListMeters(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, meters.Meters)
	assert.Empty(t, meters.Meters)
}

func TestClear(t *testing.T) {
	uc := newBillingUC(t)
	ctx := context.Background()
	_, err := uc.Compute(ctx, computeReq("SN-1", "February 2024"), "Ana")
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Clear(ctx, "SN-404"), domain.ErrNotFound)
	require.NoError(t, uc.Clear(ctx, "SN-1"))

	_, err = uc.Latest(ctx, "SN-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClearAll(t *testing.T) {
	uc := newBillingUC(t)
	ctx := context.Background()
	_, _ = uc.Compute(ctx, computeReq("SN-1", "February 2024"), "Ana")
	_, _ = uc.Compute(ctx, computeReq("SN-2", "February 2024"), "Ana")

	require.NoError(t, uc.ClearAll(ctx))
	meters, err := uc.ListMeters(ctx)
	require.NoError(t, err)
	assert.Empty(t, meters.Meters)
}
