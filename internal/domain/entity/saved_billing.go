package entity

import (
	"fmt"
	"time"
)

// SavedBillingValidity tiempo durante el cual un registro guardado sigue vigente.
const SavedBillingValidity = 30 * 24 * time.Hour

// SavedBilling registro de facturación persistido junto con las tarifas usadas para calcularlo.
type SavedBilling struct {
	ID        string
	Billing   BillingData
	Rates     RateTable
	Timestamp time.Time
}

// IsValid indica si el registro tiene menos de 30 días.
func (s *SavedBilling) IsValid(now time.Time) bool {
	return now.Sub(s.Timestamp) < SavedBillingValidity
}

// DaysRemaining días de vigencia restantes (negativo si ya venció).
func (s *SavedBilling) DaysRemaining(now time.Time) int {
	remaining := SavedBillingValidity - now.Sub(s.Timestamp)
	return int(remaining / (24 * time.Hour))
}

// BillingSummary resumen del historial de facturación de un medidor.
type BillingSummary struct {
	SerialID      string
	RecordCount   int
	FirstRecordAt time.Time
	LastRecordAt  time.Time
	FirstPeriod   string
	LastPeriod    string
	Location      string // ruta del archivo o tabla de origen
}

// DateRange rango de fechas "2006-01-02 to 2006-01-02".
func (s BillingSummary) DateRange() string {
	return fmt.Sprintf("%s to %s", s.FirstRecordAt.Format("2006-01-02"), s.LastRecordAt.Format("2006-01-02"))
}

// PeriodRange rango de periodos "Primero to Último".
func (s BillingSummary) PeriodRange() string {
	return s.FirstPeriod + " to " + s.LastPeriod
}
