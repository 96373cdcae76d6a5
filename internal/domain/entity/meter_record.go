package entity

import "github.com/shopspring/decimal"

// MeterRecord es un registro de facturación leído del medidor vía DLMS (perfil de facturación).
type MeterRecord struct {
	Clock   string          // yyyy/MM/dd HH:mm:ss
	Imp     decimal.Decimal // energía importada [kWh]
	Exp     decimal.Decimal // energía exportada [kWh]
	Abs     decimal.Decimal // energía absoluta [kWh]
	Net     decimal.Decimal // energía neta [kWh]
	MaxImp  decimal.Decimal // demanda máxima importada [W]
	MaxExp  decimal.Decimal // demanda máxima exportada [W]
	MinVolt decimal.Decimal // tensión mínima [V]
	Alert1  string
	Alert2  string
}
