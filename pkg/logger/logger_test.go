package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Kenshin-api/pkg/logger"
)

func TestNew_ProduccionEscribeJSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	comp := l.Component("dlms")
	comp.Info().Msg("descartado por nivel")
	comp.Warn().Str("serial", "SN-1").Msg("sesión fallida")

	out := buf.String()
	assert.NotContains(t, out, "descartado por nivel")
	assert.Contains(t, out, `"component":"dlms"`)
	assert.Contains(t, out, `"serial":"SN-1"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("desconocido"))
}

func TestNew_CampoService(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Service: "kenshin-api", Output: &buf})
	l.Info().Msg("arranque")
	assert.Contains(t, buf.String(), `"service":"kenshin-api"`)
}

func TestParseLevel_MayusculasYVacio(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
}
