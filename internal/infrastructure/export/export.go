// Package export genera los archivos de facturación: JSON, CSV y XLSX.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/domain/billing"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// Tipos MIME de las exportaciones.
const (
	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain; charset=ibm437"
)

// CSVKind tipo de archivo CSV de lectura.
type CSVKind string

const (
	KindBilling     CSVKind = "BD"
	KindLoadProfile CSVKind = "LP"
	KindEventLog    CSVKind = "EV"
)

// JSONFileName nombre del archivo de facturación del mes: yyyyMM_{serial}.json.
func JSONFileName(serialID string, now time.Time) string {
	return now.Format("200601") + "_" + serialID + ".json"
}

// CSVFileName nombre del CSV de lectura: {serial}_{BD|LP|EV}_{yyyyMMdd_HHmmss}.csv.
func CSVFileName(serialID string, kind CSVKind, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", serialID, kind, now.Format("20060102_150405"))
}

// BillingJSON serializa los registros como arreglo JSON indentado (ausentes como null).
func BillingJSON(bills []entity.BillingData) ([]byte, error) {
	if bills == nil {
		bills = []entity.BillingData{}
	}
	return json.MarshalIndent(bills, "", "  ")
}

var recordsHeader = []string{
	"Clock", "Imp", "Exp", "Abs", "Net", "ImpMaxDemand", "ExpMaxDemand", "MinVolt", "Alert1", "Alert2",
	"TotalUse[kWh]", "GenTrans", "Distribution", "Capex", "Other", "Universal", "VAT", "TotalAmount",
}

// RecordsCSV CSV de registros de facturación leídos del medidor. Desde el segundo registro
// se agregan los cargos calculados contra el registro anterior.
func RecordsCSV(records []entity.MeterRecord, rates entity.RateTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(recordsHeader); err != nil {
		return nil, err
	}
	thousand := decimal.NewFromInt(1000)
	for i, rec := range records {
		row := []string{
			rec.Clock,
			rec.Imp.StringFixed(3), rec.Exp.StringFixed(3), rec.Abs.StringFixed(3), rec.Net.StringFixed(3),
			rec.MaxImp.StringFixed(3), rec.MaxExp.StringFixed(3), rec.MinVolt.StringFixed(2),
			rec.Alert1, rec.Alert2,
		}
		if i == 0 {
			row = append(row, "0.000", "0.00", "0.00", "0.00", "0.00", "0.00", "0.00", "0.00")
		} else {
			b := entity.BillingData{
				PresReading: decimal.NewNullDecimal(rec.Imp),
				PrevReading: decimal.NewNullDecimal(records[i-1].Imp),
				MaxDemand:   decimal.NewNullDecimal(rec.MaxImp.Div(thousand)),
			}
			billing.Calculate(&b, rates)
			row = append(row, fixed(b.TotalUse, 3),
				fixed(b.GenTransCharges, 2), fixed(b.DistributionCharges, 2), fixed(b.SustainableCapex, 2),
				fixed(b.OtherCharges, 2), fixed(b.UniversalCharges, 2), fixed(b.ValueAddedTax, 2),
				fixed(b.TotalAmount, 2))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

var historyHeader = []string{
	"Timestamp", "Period", "PeriodFrom", "PeriodTo", "SerialID", "Commercial",
	"PrevReading", "PresReading", "TotalUse", "MaxDemand",
	"GenTrans", "Distribution", "Capex", "Other", "Universal", "VAT", "TotalAmount",
	"Discount", "Interest", "DueDate", "DiscoDate", "Reader",
}

// HistoryCSV CSV del historial guardado; los valores ausentes quedan como celda vacía.
func HistoryCSV(history []*entity.SavedBilling) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(historyHeader); err != nil {
		return nil, err
	}
	for _, s := range history {
		b := s.Billing
		row := []string{
			s.Timestamp.UTC().Format(time.RFC3339), b.Period, b.PeriodFrom, b.PeriodTo, b.SerialID, b.Commercial,
			plain(b.PrevReading), plain(b.PresReading), plain(b.TotalUse), plain(b.MaxDemand),
			fixed(b.GenTransCharges, 2), fixed(b.DistributionCharges, 2), fixed(b.SustainableCapex, 2),
			fixed(b.OtherCharges, 2), fixed(b.UniversalCharges, 2), fixed(b.ValueAddedTax, 2), fixed(b.TotalAmount, 2),
			plain(b.Discount), plain(b.Interest), b.DueDate, b.DiscoDate, b.Reader,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func fixed(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(places)
}

func plain(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
