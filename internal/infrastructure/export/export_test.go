package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/export"
)

var now = time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC)

func TestFileNames(t *testing.T) {
	assert.Equal(t, "202403_SN-1.json", export.JSONFileName("SN-1", now))
	assert.Equal(t, "SN-1_BD_20240315_093005.csv", export.CSVFileName("SN-1", export.KindBilling, now))
	assert.Equal(t, "SN-1_LP_20240315_093005.csv", export.CSVFileName("SN-1", export.KindLoadProfile, now))
}

func TestBillingJSON_AusenteEsNull(t *testing.T) {
	data, err := export.BillingJSON([]entity.BillingData{{SerialID: "SN-1", PresReading: entity.Dec(0)}})
	require.NoError(t, err)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Nil(t, raw[0]["MaxDemand"])
	assert.Equal(t, "0", raw[0]["PresReading"])

	empty, err := export.BillingJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func record(clock string, imp, maxImp int64) entity.MeterRecord {
	return entity.MeterRecord{
		Clock:   clock,
		Imp:     decimal.NewFromInt(imp),
		MaxImp:  decimal.NewFromInt(maxImp),
		MinVolt: decimal.RequireFromString("220.5"),
		Alert1:  "00",
	}
}

func TestRecordsCSV_CargosDesdeSegundoRegistro(t *testing.T) {
	records := []entity.MeterRecord{
		record("2024/02/01 00:00:00", 1000, 4000),
		record("2024/03/01 00:00:00", 1100, 5000),
	}
	data, err := export.RecordsCSV(records, entity.DefaultRateTable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Clock,Imp,Exp,Abs,Net,ImpMaxDemand"))
	assert.Equal(t, "2024/02/01 00:00:00,1000.000,0.000,0.000,0.000,4000.000,0.000,220.50,00,,0.000,0.00,0.00,0.00,0.00,0.00,0.00,0.00", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",100.000,1010.00,400.00,8.00,3.00,51.35,109.56,1581.91"), lines[2])
}

func history() []*entity.SavedBilling {
	return []*entity.SavedBilling{
		{
			Billing: entity.BillingData{
				SerialID:    "SN-1",
				Period:      "February 2024",
				PresReading: entity.Dec(1100),
				PrevReading: entity.Dec(1000),
				TotalUse:    entity.Dec(100),
				TotalAmount: decimal.NewNullDecimal(decimal.RequireFromString("1581.91")),
			},
			Rates:     entity.DefaultRateTable(),
			Timestamp: now,
		},
	}
}

func TestHistoryCSV_AusentesVacios(t *testing.T) {
	data, err := export.HistoryCSV(history())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	cells := strings.Split(lines[1], ",")
	assert.Equal(t, "2024-03-15T09:30:05Z", cells[0])
	assert.Equal(t, "1000", cells[6])
	assert.Equal(t, "", cells[9], "MaxDemand ausente")
	assert.Equal(t, "1581.91", cells[16])
}

func TestBillingXLSX_Hojas(t *testing.T) {
	data, err := export.BillingXLSX(history(), entity.DefaultRateTable())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"billing", "rates"}, f.GetSheetList())

	period, err := f.GetCellValue("billing", "B2")
	require.NoError(t, err)
	assert.Equal(t, "February 2024", period)

	rateType, _ := f.GetCellValue("rates", "B1")
	assert.Equal(t, "LARGE", rateType)
	label, _ := f.GetCellValue("rates", "B3")
	assert.Equal(t, entity.RateLabels[0], label)
	rate, _ := f.GetCellValue("rates", "C3")
	assert.Equal(t, "2.5", rate)
}

func TestDirSink_Write(t *testing.T) {
	dir := t.TempDir()
	sink := export.NewDirSink(dir)

	path, err := sink.Write("202403_SN-1.json", []byte("[]"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "202403_SN-1.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = sink.Write("../fuera.json", []byte("x"))
	assert.Error(t, err)
}
