// Package ratefile lee y valida el archivo rate.csv con la tabla de tarifas.
//
// Formato: líneas vacías y las que empiezan con '#' se ignoran; la primera línea restante es
// el encabezado y la siguiente la fila de datos: tipo de tarifa seguido de 23 valores.
package ratefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

var (
	ErrEmpty       = errors.New("rate.csv vacío")
	ErrNoDataRow   = errors.New("rate.csv sin fila de datos")
	ErrTooFewRates = errors.New("rate.csv con menos tarifas de las requeridas")
)

// ExpectedHeaders encabezados esperados (se comparan sin distinguir mayúsculas).
var ExpectedHeaders = []string{
	"Rate Type", "Generation System Charge", "Transmission Demand Charge",
	"System Loss Charge", "Distribution Demand Charge", "Supply Fix Charge",
	"Metering Fix Charge", "Reinvestment Fund for CAPEX", "Member CAPEX Contribution",
	"Lifeline Discount Subsidy", "Senior Citizen Subsidy", "Missionary Elec(NPC-SPUG)",
	"Missionary Elec(RED)", "Environmetal Charge", "Feed In Tariff Allowance",
	"NPC Stranded Contract", "NPC Stranded Debts", "Sustainable CAPEX VAT",
	"Transmisson VAT", "Generation VAT", "System Loss VAT", "Universal Charges VAT",
	"Distribution VAT", "Other VAT",
}

// ValidationResult resultado de Validate.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
	RateType  string   `json:"rate_type,omitempty"`
	RateCount int      `json:"rate_count"`
}

// Summary errores y advertencias en una sola cadena.
func (r ValidationResult) Summary() string {
	return strings.Join(append(append([]string{}, r.Errors...), r.Warnings...), "\n")
}

func contentLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

func splitCells(line string) []string {
	cells := strings.Split(line, ",")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// rateTypeOf primera palabra en mayúsculas ("LARGE COMMERCIAL" -> "LARGE").
func rateTypeOf(cell string) string {
	word, _, _ := strings.Cut(cell, " ")
	return strings.ToUpper(word)
}

func isNumeric(s string) bool {
	_, err := decimal.NewFromString(s)
	return err == nil
}

// Parse lee la tabla de tarifas. Celdas no numéricas valen 0; si la primera columna es numérica
// se toma como tarifa y el tipo queda en LARGE. Se requieren al menos 23 valores.
func Parse(r io.Reader) (entity.RateTable, error) {
	lines, err := contentLines(r)
	if err != nil {
		return entity.RateTable{}, fmt.Errorf("leer rate.csv: %w", err)
	}
	if len(lines) == 0 {
		return entity.RateTable{}, ErrEmpty
	}
	if len(lines) < 2 {
		return entity.RateTable{}, ErrNoDataRow
	}

	cells := splitCells(lines[1])
	rateType := entity.DefaultRateType
	rates := make([]decimal.Decimal, 0, len(cells))
	if d, err := decimal.NewFromString(cells[0]); err == nil {
		rates = append(rates, d)
	} else if cells[0] != "" {
		rateType = rateTypeOf(cells[0])
	}
	for _, c := range cells[1:] {
		d, err := decimal.NewFromString(c)
		if err != nil {
			d = decimal.Zero
		}
		rates = append(rates, d)
	}

	table, ok := entity.RateTableFromSlice(rates, rateType)
	if !ok {
		return entity.RateTable{}, fmt.Errorf("%w: %d de %d", ErrTooFewRates, len(rates), entity.RateCount)
	}
	return table, nil
}

// Validate revisa el archivo antes de aceptarlo y reporta errores y advertencias.
func Validate(r io.Reader) ValidationResult {
	lines, err := contentLines(r)
	if err != nil {
		return ValidationResult{Errors: []string{"No se pudo leer el archivo: " + err.Error()}}
	}
	if len(lines) == 0 {
		return ValidationResult{Errors: []string{"El archivo está vacío"}}
	}

	var res ValidationResult

	header := splitCells(lines[0])
	if want := entity.RateCount + 1; len(header) < want {
		res.Errors = append(res.Errors, fmt.Sprintf("El encabezado tiene %d columnas, se esperaban %d", len(header), want))
	}
	var missing []string
	for _, exp := range ExpectedHeaders {
		found := false
		for _, h := range header {
			if strings.EqualFold(h, exp) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, exp)
		}
	}
	if len(missing) > 0 {
		res.Warnings = append(res.Warnings, "Faltan encabezados: "+strings.Join(missing, ", "))
	}

	data := lines[1:]
	if len(data) == 0 {
		res.Errors = append(res.Errors, "No hay filas de datos (solo encabezado)")
		return res
	}
	if len(data) > 1 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Hay %d filas de datos, solo se usará la primera", len(data)))
	}

	cells := splitCells(data[0])
	switch first := cells[0]; {
	case isNumeric(first):
		res.Warnings = append(res.Warnings, fmt.Sprintf("La primera columna parece numérica (%s), se esperaba el tipo de tarifa (p. ej. 'LARGE COMMERCIAL')", first))
	case first == "":
		res.Errors = append(res.Errors, "La columna Rate Type está vacía")
	default:
		res.RateType = rateTypeOf(first)
	}

	var values []decimal.Decimal
	var invalid []string
	for i, c := range cells[1:] {
		d, err := decimal.NewFromString(c)
		if err != nil {
			invalid = append(invalid, fmt.Sprintf("Columna %d ('%s')", i+2, c))
			continue
		}
		values = append(values, d)
	}
	res.RateCount = len(values)

	if len(invalid) > 0 {
		res.Errors = append(res.Errors, "Valores no numéricos: "+strings.Join(invalid, ", "))
	}
	switch {
	case res.RateCount < entity.RateCount:
		res.Errors = append(res.Errors, fmt.Sprintf("Se encontraron %d tarifas, se esperaban %d", res.RateCount, entity.RateCount))
	case res.RateCount > entity.RateCount:
		res.Warnings = append(res.Warnings, fmt.Sprintf("Se encontraron %d tarifas, se esperaban %d (las sobrantes se ignoran)", res.RateCount, entity.RateCount))
	}

	if len(values) >= entity.RateCount {
		one := decimal.NewFromInt(1)
		checks := []struct {
			name string
			v    decimal.Decimal
		}{
			{"distribución", values[entity.RateVATDistributionMultiplier]},
			{"otros cargos", values[entity.RateVATOtherMultiplier]},
		}
		for _, c := range checks {
			if c.v.IsNegative() || c.v.GreaterThan(one) {
				res.Warnings = append(res.Warnings, fmt.Sprintf("El multiplicador de IVA de %s (%s) debería estar entre 0 y 1 (p. ej. 0.12 para 12%%)", c.name, c.v))
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}
