package billing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/ratefile"
)

func validRateCSV(rateType string) string {
	values := make([]string, entity.RateCount)
	for i := range values {
		values[i] = "0.12"
	}
	return strings.Join(ratefile.ExpectedHeaders, ",") + "\n" + rateType + "," + strings.Join(values, ",") + "\n"
}

func TestRates_CurrentPorDefecto(t *testing.T) {
	uc := billing.NewRateUseCase(newRates(t))

	resp := uc.Current()
	assert.True(t, resp.UsingDefaults)
	assert.Equal(t, entity.DefaultRateType, resp.RateType)
	require.Len(t, resp.Rates, entity.RateCount)
	assert.Equal(t, entity.RateLabels[0], resp.Rates[0].Label)
	assert.Equal(t, "2.5", resp.Rates[0].Value.String())
}

func TestRates_Validate(t *testing.T) {
	uc := billing.NewRateUseCase(newRates(t))

	ok := uc.Validate(strings.NewReader(validRateCSV("RESIDENTIAL")))
	assert.True(t, ok.Valid)
	assert.Equal(t, entity.RateCount, ok.RateCount)

	bad := uc.Validate(strings.NewReader(""))
	assert.False(t, bad.Valid)
	assert.NotEmpty(t, bad.Errors)
}

func TestRates_ReplaceValido(t *testing.T) {
	rates := newRates(t)
	uc := billing.NewRateUseCase(rates)

	resp, err := uc.Replace(strings.NewReader(validRateCSV("RESIDENTIAL")))
	require.NoError(t, err)
	assert.False(t, resp.UsingDefaults)
	assert.Equal(t, "RESIDENTIAL", resp.RateType)
	assert.Equal(t, "0.12", resp.Rates[0].Value.String())

	assert.False(t, uc.Current().UsingDefaults)
	assert.Equal(t, "RESIDENTIAL", rates.Load().RateType, "el archivo quedó escrito")
}

func TestRates_ReplaceInvalidoNoModifica(t *testing.T) {
	uc := billing.NewRateUseCase(newRates(t))

	_, err := uc.Replace(strings.NewReader("Rate Type\nLARGE,1,2\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, uc.Current().UsingDefaults)
}
