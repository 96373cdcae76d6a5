// Package printer arma el recibo en texto plano para impresoras térmicas de 64 columnas.
package printer

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// Width columnas de la impresora.
const Width = 64

var separator = strings.Repeat("=", Width)

// Render arma el recibo de b como texto UTF-8, una línea por renglón impreso.
func Render(b entity.BillingData, issuer entity.Issuer, now time.Time) string {
	var sb strings.Builder
	w := func(s string) {
		sb.WriteString(clip(s))
		sb.WriteByte('\n')
	}

	w(center("METER READING RECEIPT"))
	w("")
	w(center(issuer.Name))
	for _, part := range wrap(issuer.Address, Width) {
		w(center(part))
	}
	w(center("TEL:" + issuer.Phone))
	w(separator)

	w(pair("Period", b.Period, "Rate Type", b.Commercial))
	w(pair("Meter", b.SerialID, "Multiplier", reading(b.Multiplier)))
	w(pair("Period To", b.PeriodTo, "Pres Reading", reading(b.PresReading)))
	w(pair("Period From", b.PeriodFrom, "Prev Reading", reading(b.PrevReading)))
	w(pair("Demand KW", reading(b.MaxDemand), "Total KWH Used", reading(b.TotalUse)))
	w(separator)

	w("BILLING DETAILS:")
	w(charge("Generation & Transmission", b.GenTransCharges))
	w(charge("Distribution Charges", b.DistributionCharges))
	w(charge("Sustainable CAPEX", b.SustainableCapex))
	w(charge("Other Charges", b.OtherCharges))
	w(charge("Universal Charges", b.UniversalCharges))
	w(charge("Value Added Tax", b.ValueAddedTax))
	w(separator)
	w(fmt.Sprintf("%40s%24s", "TOTAL AMOUNT", amount(b.TotalAmount)))
	w(fmt.Sprintf("%40s%24s", "DISCOUNT", amount(b.Discount)))
	w(fmt.Sprintf("%40s%24s", "INTEREST", amount(b.Interest)))
	w(separator)

	w("Due Date     : " + dash(b.DueDate))
	w("Disconnection: " + dash(b.DiscoDate))
	w("Reader: " + dash(b.Reader))
	w("System Version: " + dash(b.Version))
	w("")
	w("Thank you for using MeterKenshin!")
	w("Generated on: " + now.Format("01/02/2006 15:04"))
	return sb.String()
}

// Encode convierte texto UTF-8 a CP437, la tabla de códigos de la impresora.
// Los caracteres sin representación se reemplazan por el byte SUB.
func Encode(s string) ([]byte, error) {
	enc := encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("codificar recibo cp437: %w", err)
	}
	return out, nil
}

// Receipt recibo listo para enviar a la impresora.
func Receipt(b entity.BillingData, issuer entity.Issuer, now time.Time) ([]byte, error) {
	return Encode(Render(b, issuer, now))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func pair(l1, v1, l2, v2 string) string {
	return fmt.Sprintf("%-11s:%-19s%-14s: %s", l1, dash(v1), l2, dash(v2))
}

func charge(label string, d decimal.NullDecimal) string {
	return fmt.Sprintf("%-27s:%36s", label, amount(d))
}

func reading(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(3)
}

func amount(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= Width {
		return s
	}
	return strings.Repeat(" ", (Width-n)/2) + s
}

// clip corta s a Width runas.
func clip(s string) string {
	if utf8.RuneCountInString(s) <= Width {
		return s
	}
	return string([]rune(s)[:Width])
}

// wrap parte s en renglones de hasta n runas cortando en espacios.
func wrap(s string, n int) []string {
	var lines []string
	var cur []string
	curLen := 0
	for _, word := range strings.Fields(s) {
		wl := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+wl > n {
			lines = append(lines, strings.Join(cur, " "))
			cur, curLen = nil, 0
		}
		if curLen > 0 {
			curLen++
		}
		cur = append(cur, word)
		curLen += wl
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}
