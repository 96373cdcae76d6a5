package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// Escenario completo: SerialID, lecturas y TotalAmount sin informar.
func TestBillingData_LecturasYAusencia(t *testing.T) {
	var b entity.BillingData
	b.SerialID = "12345"
	b.PresReading = entity.Dec(100.5)
	b.PrevReading = entity.Dec(80.0)

	assert.Equal(t, "12345", b.SerialID)
	require.True(t, b.PresReading.Valid)
	require.True(t, b.PrevReading.Valid)
	diff := b.PresReading.Decimal.Sub(b.PrevReading.Decimal)
	assert.True(t, diff.Equal(decimal.RequireFromString("20.5")), "diferencia esperada 20.5, obtenida %s", diff)

	assert.False(t, b.TotalAmount.Valid, "TotalAmount no informado debe seguir ausente, no 0")
}

func TestBillingData_CamposIndependientes(t *testing.T) {
	var b entity.BillingData
	b.Discount = entity.Dec(10)
	b.TotalAmount = entity.Dec(999.99)

	assert.True(t, b.Discount.Decimal.Equal(decimal.NewFromInt(10)), "asignar TotalAmount no debe alterar Discount")
	assert.False(t, b.Interest.Valid)
	assert.False(t, b.TotalUse.Valid)

	b.TotalAmount = entity.NoValue
	assert.False(t, b.TotalAmount.Valid)
	assert.True(t, b.Discount.Valid)
}

func TestBillingData_CeroDistintoDeAusente(t *testing.T) {
	var b entity.BillingData
	b.Interest = entity.Dec(0)

	assert.True(t, b.Interest.Valid, "cero explícito debe quedar informado")
	assert.True(t, b.Interest.Decimal.IsZero())
	assert.False(t, b.Discount.Valid, "campo nunca asignado debe quedar ausente")
}

func TestBillingData_JSONConservaAusencia(t *testing.T) {
	in := entity.BillingData{
		SerialID:    "M-01",
		PresReading: entity.Dec(100.5),
		Interest:    entity.Dec(0),
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"TotalAmount":null`)

	var out entity.BillingData
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "M-01", out.SerialID)
	assert.False(t, out.TotalAmount.Valid)
	assert.True(t, out.Interest.Valid)
	assert.True(t, out.Interest.Decimal.IsZero())
	assert.True(t, out.PresReading.Decimal.Equal(decimal.RequireFromString("100.5")))
}

func TestValueOr(t *testing.T) {
	assert.True(t, entity.ValueOr(entity.NoValue, decimal.NewFromInt(7)).Equal(decimal.NewFromInt(7)))
	assert.True(t, entity.ValueOr(entity.Dec(2), decimal.NewFromInt(7)).Equal(decimal.NewFromInt(2)))
}

func TestDefaultRateTable(t *testing.T) {
	rt := entity.DefaultRateTable()
	assert.Equal(t, entity.DefaultRateType, rt.RateType)
	assert.True(t, rt.Rates[entity.RateTransmissionDemand].Equal(decimal.NewFromInt(150)))
	assert.True(t, rt.Rates[entity.RateVATOtherMultiplier].Equal(decimal.RequireFromString("0.12")))
	assert.Len(t, rt.Slice(), entity.RateCount)

	_, ok := entity.RateTableFromSlice(rt.Slice()[:10], "X")
	assert.False(t, ok)
}

func TestSavedBilling_Vigencia(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	s := &entity.SavedBilling{Timestamp: now.Add(-10 * 24 * time.Hour)}
	assert.True(t, s.IsValid(now))
	assert.Equal(t, 20, s.DaysRemaining(now))

	old := &entity.SavedBilling{Timestamp: now.Add(-31 * 24 * time.Hour)}
	assert.False(t, old.IsValid(now))
}
