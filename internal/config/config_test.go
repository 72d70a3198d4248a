package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.Refund.GatewayTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Returns.MethodDeadline)
	assert.Equal(t, "@every 1h", cfg.Returns.OverdueCron)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("REFUND_GATEWAY_TIMEOUT", "5s")
	t.Setenv("RETURN_METHOD_DEADLINE", "48h")
	t.Setenv("ZALOPAY_APP_ID", "2553")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Refund.GatewayTimeout)
	assert.Equal(t, 48*time.Hour, cfg.Returns.MethodDeadline)
	assert.Equal(t, 2553, cfg.ZaloPay.AppID)
}

func TestValidateRequiresJWTSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "prod-secret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoadDatabaseConfigRejectsBadPort(t *testing.T) {
	t.Setenv("DB_PORT", "abc")

	_, err := LoadDatabaseConfig()
	assert.Error(t, err)
}

func TestLoadDatabaseConfigReportsEveryBadVariable(t *testing.T) {
	t.Setenv("DB_MAX_CONNECTIONS", "many")
	t.Setenv("DB_RETRY_DELAY", "soon")

	_, err := LoadDatabaseConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_CONNECTIONS")
	assert.Contains(t, err.Error(), "DB_RETRY_DELAY")
}

func TestLoadDatabaseConfigPoolBounds(t *testing.T) {
	t.Setenv("DB_MAX_CONNECTIONS", "4")
	t.Setenv("DB_MIN_CONNECTIONS", "8")

	_, err := LoadDatabaseConfig()
	assert.Error(t, err)

	t.Setenv("DB_MIN_CONNECTIONS", "2")
	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, int32(2), cfg.MinConns)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
}
