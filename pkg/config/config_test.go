package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kenshin-api/pkg/config"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, config.StorageFile, cfg.Billing.Storage)
	assert.Equal(t, "LARGE", cfg.Billing.Commercial)
	assert.Equal(t, 3*time.Second, cfg.DLMS.ResponseTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("BILLING_STORAGE", "POSTGRES")
	v.Set("HTTP_PORT", "9090")
	v.Set("DLMS_RESPONSE_TIMEOUT", "500ms")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_PASSWORD", "p@ss:word")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, config.StoragePostgres, cfg.Billing.Storage)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.DLMS.ResponseTimeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Contains(t, cfg.DB.ConnectionString(), "p%40ss%3Aword")
}

func TestFromViper_StorageInvalido(t *testing.T) {
	v := viper.New()
	v.Set("BILLING_STORAGE", "sqlite")
	_, err := config.FromViper(v)
	assert.Error(t, err)
}
