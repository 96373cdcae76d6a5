package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingDataDTO registro de facturación en JSON. Los numéricos ausentes viajan como null.
type BillingDataDTO struct {
	Period     string `json:"period"`
	PeriodFrom string `json:"period_from"`
	PeriodTo   string `json:"period_to"`
	Commercial string `json:"commercial"`
	SerialID   string `json:"serial_id"`

	Multiplier  decimal.NullDecimal `json:"multiplier" swaggertype:"string"`
	PresReading decimal.NullDecimal `json:"pres_reading" swaggertype:"string"`
	PrevReading decimal.NullDecimal `json:"prev_reading" swaggertype:"string"`
	MaxDemand   decimal.NullDecimal `json:"max_demand" swaggertype:"string"`
	TotalUse    decimal.NullDecimal `json:"total_use" swaggertype:"string"`

	GenTransCharges     decimal.NullDecimal `json:"gen_trans_charges" swaggertype:"string"`
	DistributionCharges decimal.NullDecimal `json:"distribution_charges" swaggertype:"string"`
	SustainableCapex    decimal.NullDecimal `json:"sustainable_capex" swaggertype:"string"`
	OtherCharges        decimal.NullDecimal `json:"other_charges" swaggertype:"string"`
	UniversalCharges    decimal.NullDecimal `json:"universal_charges" swaggertype:"string"`
	ValueAddedTax       decimal.NullDecimal `json:"value_added_tax" swaggertype:"string"`

	TotalAmount decimal.NullDecimal `json:"total_amount" swaggertype:"string"`
	Discount    decimal.NullDecimal `json:"discount" swaggertype:"string"`
	Interest    decimal.NullDecimal `json:"interest" swaggertype:"string"`

	DueDate      string `json:"due_date"`
	DiscoDate    string `json:"disco_date"`
	Reader       string `json:"reader"`
	ReadDatetime string `json:"read_datetime"`
	Version      string `json:"version"`
}

// ComputeBillingRequest body para POST /api/billing/compute.
// Los cargos se calculan en el servidor; solo se envían lecturas y cabecera.
type ComputeBillingRequest struct {
	SerialID    string              `json:"serial_id" validate:"required"`
	Period      string              `json:"period"`
	PeriodFrom  string              `json:"period_from"`
	PeriodTo    string              `json:"period_to"`
	Commercial  string              `json:"commercial,omitempty"`
	Multiplier  decimal.NullDecimal `json:"multiplier" swaggertype:"string"`
	PresReading decimal.NullDecimal `json:"pres_reading" swaggertype:"string"`
	PrevReading decimal.NullDecimal `json:"prev_reading" swaggertype:"string"`
	MaxDemand   decimal.NullDecimal `json:"max_demand" swaggertype:"string"`
	Discount    decimal.NullDecimal `json:"discount" swaggertype:"string"`
	Interest    decimal.NullDecimal `json:"interest" swaggertype:"string"`
	DueDate     string              `json:"due_date,omitempty"`
	DiscoDate   string              `json:"disco_date,omitempty"`
}

// ComputeBillingResponse resultado del cálculo ya persistido.
type ComputeBillingResponse struct {
	ID       string         `json:"id"`
	Billing  BillingDataDTO `json:"billing"`
	RateType string         `json:"rate_type"`
	Warnings []string       `json:"warnings,omitempty"`
}

// SavedBillingResponse registro del historial con su vigencia.
type SavedBillingResponse struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Valid         bool              `json:"valid"`
	DaysRemaining int               `json:"days_remaining"`
	Billing       BillingDataDTO    `json:"billing"`
	RateType      string            `json:"rate_type"`
	Rates         []decimal.Decimal `json:"rates" swaggertype:"array,string"`
}

// HistoryResponse página del historial de un medidor.
type HistoryResponse struct {
	Items []SavedBillingResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// SummaryResponse resumen del historial de un medidor.
type SummaryResponse struct {
	SerialID      string    `json:"serial_id"`
	RecordCount   int       `json:"record_count"`
	FirstRecordAt time.Time `json:"first_record_at"`
	LastRecordAt  time.Time `json:"last_record_at"`
	DateRange     string    `json:"date_range"`
	PeriodRange   string    `json:"period_range"`
	Location      string    `json:"location"`
}

// MetersResponse medidores con historial.
type MetersResponse struct {
	Meters []string `json:"meters"`
}

// ReadMeterRequest body para POST /api/meters/read.
type ReadMeterRequest struct {
	SerialID    string `json:"serial_id" validate:"required"`
	SyncClock   bool   `json:"sync_clock,omitempty"`
	DemandReset bool   `json:"demand_reset,omitempty"`
}

// ReadMeterResponse resultado de una lectura DLMS.
type ReadMeterResponse struct {
	SerialID    string           `json:"serial_id"`
	RecordCount int              `json:"record_count"`
	Billing     []BillingDataDTO `json:"billing"`
	Files       []string         `json:"files,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// DLMSAvailabilityResponse estado de la fábrica de sesiones DLMS.
type DLMSAvailabilityResponse struct {
	Available bool `json:"available"`
}
