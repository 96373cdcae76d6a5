// Package pdf genera el recibo de lectura y facturación de un medidor en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Distribuidora + dirección + teléfono               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MEDIDOR: periodo, serie, lecturas y demanda                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CARGOS: una línea por grupo de cargo                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: total, descuento, interés y fechas                │
//	│  FOOTER: lector, versión y fecha de lectura                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ReceiptPDF genera el recibo de b y devuelve los bytes del documento.
func ReceiptPDF(b entity.BillingData, issuer entity.Issuer) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Meter Reading Receipt "+b.SerialID, true).
		WithAuthor(issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(issuer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(meterRows(b)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("BILLING DETAILS"))
	m.AddRows(chargeRows(b)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRows(b)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(b)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(issuer entity.Issuer) core.Row {
	return row.New(24).Add(
		col.New(12).Add(
			text.New("METER READING RECEIPT", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorGray, Top: 1,
			}),
			text.New(nonEmpty(issuer.Name, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Align: align.Center, Color: colorPrimary, Top: 6,
			}),
			text.New(issuer.Address, props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 13,
			}),
			text.New("TEL: "+nonEmpty(issuer.Phone, "-"), props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 18,
			}),
		),
	)
}

// meterRows: bloque de dos columnas con los datos de la lectura.
func meterRows(b entity.BillingData) []core.Row {
	pairs := [][4]string{
		{"Period", nonEmpty(b.Period, "-"), "Rate Type", nonEmpty(b.Commercial, "-")},
		{"Meter", nonEmpty(b.SerialID, "-"), "Multiplier", show(b.Multiplier, 3)},
		{"Period To", nonEmpty(b.PeriodTo, "-"), "Pres Reading", show(b.PresReading, 3)},
		{"Period From", nonEmpty(b.PeriodFrom, "-"), "Prev Reading", show(b.PrevReading, 3)},
		{"Demand kW", show(b.MaxDemand, 3), "Total kWh Used", show(b.TotalUse, 3)},
	}
	rows := make([]core.Row, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(p[0]+":", props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
			col.New(4).Add(text.New(p[1], props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(p[2]+":", props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
			col.New(3).Add(text.New(p[3], props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func sectionTitle(s string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func chargeRows(b entity.BillingData) []core.Row {
	charges := []struct {
		label string
		value decimal.NullDecimal
	}{
		{"Generation & Transmission Charges", b.GenTransCharges},
		{"Distribution Charges", b.DistributionCharges},
		{"Sustainable CAPEX", b.SustainableCapex},
		{"Other Charges", b.OtherCharges},
		{"Universal Charges", b.UniversalCharges},
		{"Value Added Tax", b.ValueAddedTax},
	}
	rows := make([]core.Row, 0, len(charges))
	for _, c := range charges {
		rows = append(rows, row.New(6).Add(
			col.New(8).Add(text.New(c.label, props.Text{Size: 8, Top: 1, Left: 2})),
			col.New(4).Add(text.New(money(c.value), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalRows(b entity.BillingData) []core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 1})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: 1})
	}

	return []core.Row{
		row.New(9).Add(
			col.New(6),
			col.New(3).Add(text.New("TOTAL AMOUNT:", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
			})),
			col.New(3).Add(text.New(money(b.TotalAmount), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
			})),
		),
		row.New(6).Add(col.New(6), col.New(3).Add(label("Discount:")), col.New(3).Add(value(money(b.Discount)))),
		row.New(6).Add(col.New(6), col.New(3).Add(label("Interest:")), col.New(3).Add(value(money(b.Interest)))),
		row.New(6).Add(col.New(6), col.New(3).Add(label("Due Date:")), col.New(3).Add(value(nonEmpty(b.DueDate, "-")))),
		row.New(6).Add(col.New(6), col.New(3).Add(label("Disconnection:")), col.New(3).Add(value(nonEmpty(b.DiscoDate, "-")))),
	}
}

func footerRows(b entity.BillingData) []core.Row {
	lines := []string{
		"Reader: " + nonEmpty(b.Reader, "-"),
		"System Version: " + nonEmpty(b.Version, "-"),
		"Read on: " + nonEmpty(b.ReadDatetime, "-"),
	}
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(l, props.Text{Size: 7, Color: colorGray, Top: 1}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// show valor con places decimales o "-" si no fue leído.
func show(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(places)
}

func money(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return FormatMoney(d.Decimal)
}

// FormatMoney dos decimales con separador de miles.
// Ej: 1581.905 → "1,581.91", -2500 → "-2,500.00"
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "." + frac
	if d.IsNegative() && !d.Round(2).IsZero() {
		out = "-" + out
	}
	return out
}
