package dto

import "github.com/shopspring/decimal"

// RateDTO una tarifa con su etiqueta.
type RateDTO struct {
	Index int             `json:"index"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value" swaggertype:"string"`
}

// RatesResponse tabla de tarifas vigente.
type RatesResponse struct {
	RateType      string    `json:"rate_type"`
	UsingDefaults bool      `json:"using_defaults"`
	Rates         []RateDTO `json:"rates"`
}

// RateValidationResponse resultado de validar un rate.csv.
type RateValidationResponse struct {
	Valid     bool     `json:"valid"`
	RateType  string   `json:"rate_type,omitempty"`
	RateCount int      `json:"rate_count"`
	Summary   string   `json:"summary"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
