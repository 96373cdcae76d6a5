package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// Warning advertencia emitida cuando el cálculo tuvo que asumir un valor.
type Warning string

// Calculate completa TotalUse y las líneas de cargo de b a partir de las lecturas y la tabla
// de tarifas (servicio de dominio). Los demás campos no se tocan.
//
//	GenTrans     = uso*r0 + demanda*r1 + uso*r2
//	Distribución = demanda*r3 + r4 + r5
//	CAPEX        = uso*(r6+r7)
//	Otros        = uso*(r8+r9)
//	Universal    = uso*(r10..r15)
//	IVA          = uso*(r16..r20) + Distribución*r21 + Otros*r22
//	Total        = suma de las seis líneas
func Calculate(b *entity.BillingData, rt entity.RateTable) []Warning {
	var warnings []Warning
	r := rt.Rates

	totalUse := decimal.Zero
	switch {
	case !b.PresReading.Valid || !b.PrevReading.Valid:
		warnings = append(warnings, Warning(fmt.Sprintf("lecturas incompletas para %s: pres=%s prev=%s",
			b.SerialID, show(b.PresReading), show(b.PrevReading))))
	case b.PresReading.Decimal.LessThan(b.PrevReading.Decimal):
		warnings = append(warnings, Warning(fmt.Sprintf("lectura actual (%s) menor que la anterior (%s) para %s",
			b.PresReading.Decimal, b.PrevReading.Decimal, b.SerialID)))
	case b.PresReading.Decimal.IsNegative() || b.PrevReading.Decimal.IsNegative():
		warnings = append(warnings, Warning(fmt.Sprintf("lecturas negativas para %s: pres=%s prev=%s",
			b.SerialID, b.PresReading.Decimal, b.PrevReading.Decimal)))
	default:
		totalUse = b.PresReading.Decimal.Sub(b.PrevReading.Decimal)
	}

	maxDemand := decimal.Zero
	switch {
	case !b.MaxDemand.Valid:
		warnings = append(warnings, Warning("demanda máxima ausente para "+b.SerialID+", se usa 0"))
	case b.MaxDemand.Decimal.IsNegative():
		warnings = append(warnings, Warning(fmt.Sprintf("demanda máxima negativa (%s) para %s",
			b.MaxDemand.Decimal, b.SerialID)))
	default:
		maxDemand = b.MaxDemand.Decimal
	}

	genTrans := totalUse.Mul(r[entity.RateGenerationSystem]).
		Add(maxDemand.Mul(r[entity.RateTransmissionDemand])).
		Add(totalUse.Mul(r[entity.RateSystemLoss]))
	distribution := maxDemand.Mul(r[entity.RateDistributionDemand]).
		Add(r[entity.RateSupplyFix]).
		Add(r[entity.RateMeteringFix])
	capex := totalUse.Mul(sum(r[entity.RateReinvestmentCapex : entity.RateMemberCapex+1]))
	other := totalUse.Mul(sum(r[entity.RateLifelineDiscount : entity.RateSeniorCitizenSubsidy+1]))
	universal := totalUse.Mul(sum(r[entity.RateMissionaryNPCSPUG : entity.RateNPCStrandedDebts+1]))
	vat := totalUse.Mul(sum(r[entity.RateVATSustainableCapex : entity.RateVATUniversal+1])).
		Add(distribution.Mul(r[entity.RateVATDistributionMultiplier])).
		Add(other.Mul(r[entity.RateVATOtherMultiplier]))

	total := genTrans.Add(distribution).Add(capex).Add(other).Add(universal).Add(vat)

	b.TotalUse = decimal.NewNullDecimal(totalUse)
	b.GenTransCharges = decimal.NewNullDecimal(genTrans)
	b.DistributionCharges = decimal.NewNullDecimal(distribution)
	b.SustainableCapex = decimal.NewNullDecimal(capex)
	b.OtherCharges = decimal.NewNullDecimal(other)
	b.UniversalCharges = decimal.NewNullDecimal(universal)
	b.ValueAddedTax = decimal.NewNullDecimal(vat)
	b.TotalAmount = decimal.NewNullDecimal(total)
	return warnings
}

func sum(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...)
}

func show(d decimal.NullDecimal) string {
	if !d.Valid {
		return "null"
	}
	return d.Decimal.String()
}
