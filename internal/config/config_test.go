package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pizzeria-storefront/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"REDIS_URL":                "redis://localhost:6379/0",
		"WOO_BASE_URL":             "https://pizzeria.example/",
		"STORE_TIMEZONE":           "",
		"CART_TTL":                 "",
		"PENDING_AMOUNT_THRESHOLD": "",
		"CHECKOUT_RATE_LIMIT":      "",
		"CORS_ALLOWED_ORIGINS":     "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, "https://pizzeria.example", cfg.WooBaseURL)
	require.Equal(t, "America/Santiago", cfg.StoreTimezone)
	require.Equal(t, "America/Santiago", cfg.Location().String())
	require.Equal(t, 7*24*time.Hour, cfg.CartTTL)
	require.Equal(t, int64(10000), cfg.PendingAmountThreshold)
	require.Equal(t, int64(2500), cfg.DefaultShippingFee)
	require.Equal(t, "10-M", cfg.CheckoutRateLimit)
	require.Nil(t, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["CART_TTL"] = "2h"
	env["PENDING_AMOUNT_THRESHOLD"] = "5000"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.cl, ,https://b.cl"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, cfg.CartTTL)
	require.Equal(t, int64(5000), cfg.PendingAmountThreshold)
	require.Equal(t, []string{"https://a.cl", "https://b.cl"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresUpstream(t *testing.T) {
	env := baseEnv()
	env["WOO_BASE_URL"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["STORE_TIMEZONE"] = "Mars/Olympus"
	_, err = config.LoadForTests(env)
	require.Error(t, err)
}
