package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// Formatos de fecha usados en el medidor y en el recibo.
const (
	MeterClockLayout   = "2006/01/02 15:04:05"
	meterDateLayout    = "2006/01/02"
	LocalDateLayout    = "01/02/2006"
	ReadDatetimeLayout = "Mon 02 Jan 2006 15:04:05"
)

// Defaults valores fijos de cabecera que no vienen del medidor (configuración).
type Defaults struct {
	Commercial string
	Multiplier decimal.Decimal
	Discount   decimal.Decimal
	Interest   decimal.Decimal
	Reader     string
	Version    string
}

// parseMeterDate interpreta los primeros 10 caracteres del reloj del medidor (yyyy/MM/dd).
func parseMeterDate(clock string) (time.Time, error) {
	if len(clock) < len(meterDateLayout) {
		return time.Time{}, fmt.Errorf("%w: reloj de medidor %q", domain.ErrInvalidInput, clock)
	}
	t, err := time.Parse(meterDateLayout, clock[:len(meterDateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reloj de medidor %q", domain.ErrInvalidInput, clock)
	}
	return t, nil
}

// DateTimeToMonth convierte "2024/09/30 00:00:00" en "September 2024".
func DateTimeToMonth(clock string) (string, error) {
	t, err := parseMeterDate(clock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %d", t.Month(), t.Year()), nil
}

// ToLocalDate convierte "2024/09/30 ..." en "09/30/2024".
func ToLocalDate(clock string) (string, error) {
	t, err := parseMeterDate(clock)
	if err != nil {
		return "", err
	}
	return t.Format(LocalDateLayout), nil
}

// FormattedMonthDay fecha desplazada en meses y días desde now, formato "Month DD, YYYY".
// El desplazamiento por meses se ajusta al último día del mes destino (31/01 + 1 mes = 28/02).
func FormattedMonthDay(now time.Time, monthOffset, dayOffset int) string {
	t := addMonthsClamped(now, monthOffset).AddDate(0, 0, dayOffset)
	return fmt.Sprintf("%s %2d, %4d", t.Month(), t.Day(), t.Year())
}

// NowDate fecha/hora de lectura, formato "Mon 02 Jan 2006 15:04:05".
func NowDate(now time.Time) string {
	return now.Format(ReadDatetimeLayout)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return target.AddDate(0, 0, day-1)
}

// BuildFromRecords genera un BillingData por cada par consecutivo de registros del medidor
// y calcula sus cargos. Requiere al menos dos registros.
func BuildFromRecords(
	serialID string,
	records []entity.MeterRecord,
	rates entity.RateTable,
	defaults Defaults,
	now time.Time,
) ([]entity.BillingData, []Warning, error) {
	if serialID == "" {
		return nil, nil, fmt.Errorf("%w: serial vacío", domain.ErrInvalidInput)
	}
	if len(records) < 2 {
		return nil, nil, domain.ErrInsufficientRecords
	}

	var warnings []Warning
	out := make([]entity.BillingData, 0, len(records)-1)
	thousand := decimal.NewFromInt(1000)

	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]

		period, err := DateTimeToMonth(prev.Clock)
		if err != nil {
			return nil, nil, err
		}
		from, err := ToLocalDate(prev.Clock)
		if err != nil {
			return nil, nil, err
		}
		to, err := ToLocalDate(cur.Clock)
		if err != nil {
			return nil, nil, err
		}

		b := entity.BillingData{
			Period:       period,
			PeriodFrom:   from,
			PeriodTo:     to,
			Commercial:   defaults.Commercial,
			SerialID:     serialID,
			Multiplier:   decimal.NewNullDecimal(defaults.Multiplier),
			PrevReading:  decimal.NewNullDecimal(prev.Imp),
			PresReading:  decimal.NewNullDecimal(cur.Imp),
			MaxDemand:    decimal.NewNullDecimal(cur.MaxImp.Div(thousand)), // W -> kW
			DueDate:      FormattedMonthDay(now, 1, 0),
			DiscoDate:    FormattedMonthDay(now, 1, 1),
			Discount:     decimal.NewNullDecimal(defaults.Discount),
			Interest:     decimal.NewNullDecimal(defaults.Interest),
			Reader:       defaults.Reader,
			ReadDatetime: NowDate(now),
			Version:      defaults.Version,
		}
		warnings = append(warnings, Calculate(&b, rates)...)
		out = append(out, b)
	}
	return out, warnings, nil
}
