package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

const (
	sheetBilling = "billing"
	sheetRates   = "rates"
)

// BillingXLSX libro con la hoja "billing" (un registro por fila) y "rates" (tarifas vigentes).
func BillingXLSX(history []*entity.SavedBilling, rates entity.RateTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetBilling); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetRates); err != nil {
		return nil, err
	}

	for i, h := range historyHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetBilling, cell, h)
	}
	for r, s := range history {
		b := s.Billing
		values := []interface{}{
			s.Timestamp.UTC().Format(time.RFC3339), b.Period, b.PeriodFrom, b.PeriodTo, b.SerialID, b.Commercial,
			cellValue(b.PrevReading), cellValue(b.PresReading), cellValue(b.TotalUse), cellValue(b.MaxDemand),
			cellValue(b.GenTransCharges), cellValue(b.DistributionCharges), cellValue(b.SustainableCapex),
			cellValue(b.OtherCharges), cellValue(b.UniversalCharges), cellValue(b.ValueAddedTax), cellValue(b.TotalAmount),
			cellValue(b.Discount), cellValue(b.Interest), b.DueDate, b.DiscoDate, b.Reader,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetBilling, cell, v); err != nil {
				return nil, fmt.Errorf("celda %s: %w", cell, err)
			}
		}
	}

	_ = f.SetCellValue(sheetRates, "A1", "Rate Type")
	_ = f.SetCellValue(sheetRates, "B1", rates.RateType)
	_ = f.SetCellValue(sheetRates, "A2", "Index")
	_ = f.SetCellValue(sheetRates, "B2", "Label")
	_ = f.SetCellValue(sheetRates, "C2", "Rate")
	for i, label := range entity.RateLabels {
		row := i + 3
		_ = f.SetCellValue(sheetRates, fmt.Sprintf("A%d", row), i)
		_ = f.SetCellValue(sheetRates, fmt.Sprintf("B%d", row), label)
		_ = f.SetCellValue(sheetRates, fmt.Sprintf("C%d", row), rates.Rates[i].InexactFloat64())
	}
	_ = f.SetColWidth(sheetRates, "B", "B", 36)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellValue número para la celda; ausente = celda vacía.
func cellValue(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}
