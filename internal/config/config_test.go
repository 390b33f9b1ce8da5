package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("OMISE_SECRET_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 75.0, cfg.PlatformFee)
	assert.Equal(t, "thb", cfg.PaymentCurrency)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "hilot.bookings", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.GatewayConfigured())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}

func TestGatewayConfigured(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("OMISE_SECRET_KEY", "skey_test_123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.GatewayConfigured())
	assert.Contains(t, cfg.DSN(), "dbname=hilot")
}
