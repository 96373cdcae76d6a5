package entity

import "github.com/shopspring/decimal"

// BillingData representa el registro de facturación de un medidor para un periodo.
// Es un agregado plano: sin validaciones, sin campos derivados y sin efectos cruzados
// entre campos. Los numéricos son NullDecimal para distinguir "sin leer" (Valid=false)
// de un cero explícito; los textos vacíos se consideran no informados.
type BillingData struct {
	// Ciclo de facturación
	Period     string
	PeriodFrom string
	PeriodTo   string

	// Cuenta / medidor
	Commercial string // tipo de tarifa (ej. LARGE, COMMERCIAL)
	SerialID   string

	// Lecturas
	Multiplier  decimal.NullDecimal
	PresReading decimal.NullDecimal // kWh
	PrevReading decimal.NullDecimal // kWh
	MaxDemand   decimal.NullDecimal // kW
	TotalUse    decimal.NullDecimal // kWh

	// Cargos
	GenTransCharges     decimal.NullDecimal
	DistributionCharges decimal.NullDecimal
	SustainableCapex    decimal.NullDecimal
	OtherCharges        decimal.NullDecimal
	UniversalCharges    decimal.NullDecimal
	ValueAddedTax       decimal.NullDecimal

	// Totales
	TotalAmount decimal.NullDecimal
	Discount    decimal.NullDecimal
	Interest    decimal.NullDecimal

	DueDate   string // fecha límite de pago
	DiscoDate string // fecha de corte

	// Auditoría de la lectura
	Reader       string
	ReadDatetime string
	Version      string
}

// NoValue es el NullDecimal ausente.
var NoValue = decimal.NullDecimal{}

// Dec construye un NullDecimal presente a partir de un float.
func Dec(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

// ValueOr devuelve el valor de d o def si no está informado.
func ValueOr(d decimal.NullDecimal, def decimal.Decimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return def
}
