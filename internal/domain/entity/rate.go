package entity

import "github.com/shopspring/decimal"

// RateCount cantidad de tarifas que usa el cálculo de facturación.
const RateCount = 23

// DefaultRateType tipo de tarifa cuando no hay rate.csv.
const DefaultRateType = "LARGE"

// Índices de la tabla de tarifas.
const (
	RateGenerationSystem = iota
	RateTransmissionDemand
	RateSystemLoss
	RateDistributionDemand
	RateSupplyFix
	RateMeteringFix
	RateReinvestmentCapex
	RateMemberCapex
	RateLifelineDiscount
	RateSeniorCitizenSubsidy
	RateMissionaryNPCSPUG
	RateMissionaryRED
	RateEnvironmental
	RateFeedInTariff
	RateNPCStrandedContract
	RateNPCStrandedDebts
	RateVATSustainableCapex
	RateVATTransmission
	RateVATGeneration
	RateVATSystemLoss
	RateVATUniversal
	RateVATDistributionMultiplier
	RateVATOtherMultiplier
)

// RateTable tabla de tarifas vigente (23 valores) y su tipo.
type RateTable struct {
	Rates    [RateCount]decimal.Decimal
	RateType string
}

// RateLabels etiquetas legibles por índice, en el orden de las columnas de rate.csv.
var RateLabels = [RateCount]string{
	"Gen/Trans: Generation System",
	"Gen/Trans: Transmission Demand",
	"Gen/Trans: System Loss",
	"Distribution: Demand Charge",
	"Distribution: Supply Fix",
	"Distribution: Metering Fix",
	"Sustainable CAPEX: Reinvestment",
	"Sustainable CAPEX: Member CAPEX",
	"Other: Lifeline Discount",
	"Other: Senior Citizen Subsidy",
	"Universal: Missionary(NPC-SPUG)",
	"Universal: Missionary(RED)",
	"Universal: Environmental",
	"Universal: Feed In Tariff",
	"Universal: NPC Stranded Contract",
	"Universal: NPC Stranded Debts",
	"VAT: Sustainable CAPEX",
	"VAT: Transmission",
	"VAT: Generation",
	"VAT: System Loss",
	"VAT: Universal Charges",
	"VAT: Distribution Multiplier",
	"VAT: Other Charges Multiplier",
}

var defaultRates = [RateCount]string{
	"2.5", "150.0", "0.1", // Gen/Trans
	"50.0", "100.0", "50.0", // Distribución
	"0.05", "0.03", // Sustainable CAPEX
	"0.02", "0.01", // Otros
	"0.001", "0.12", "0.0025", "0.04", "0.1", "0.25", // Universal
	"0.0", "0.3", "0.3", "0.012", "0.0", // IVA por kWh
	"0.12", "0.12", // multiplicadores de IVA: distribución, otros
}

// DefaultRateTable tarifas por defecto cuando no se cargó rate.csv.
func DefaultRateTable() RateTable {
	var t RateTable
	for i, s := range defaultRates {
		t.Rates[i] = decimal.RequireFromString(s)
	}
	t.RateType = DefaultRateType
	return t
}

// Slice devuelve las tarifas como slice (útil para serializar).
func (t RateTable) Slice() []decimal.Decimal {
	out := make([]decimal.Decimal, RateCount)
	copy(out, t.Rates[:])
	return out
}

// RateTableFromSlice construye la tabla a partir de un slice; requiere al menos RateCount valores.
func RateTableFromSlice(rates []decimal.Decimal, rateType string) (RateTable, bool) {
	var t RateTable
	if len(rates) < RateCount {
		return t, false
	}
	copy(t.Rates[:], rates[:RateCount])
	t.RateType = rateType
	return t, true
}
