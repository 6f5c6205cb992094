package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv                    string
	Port                      string
	RedisURL                  string
	WooBaseURL                string
	WooConsumerKey            string
	WooConsumerSecret         string
	StoreTimezone             string
	StoreLocale               string
	CurrencySymbol            string
	BusinessName              string
	BusinessAddress           string
	BusinessCity              string
	CartTTL                   time.Duration
	SessionSnapshotTTL        time.Duration
	SessionRefreshInterval    time.Duration
	PendingAmountThreshold    int64
	DefaultShippingFee        int64
	DefaultFreeShippingAmount int64
	ExtraIngredientPrice      int64
	NotifyWebhookURL          string
	NotifyWebhookSecret       string
	NotifyWhatsAppPhone       string
	NotifyLogSummaries        bool
	UpstreamTimeout           time.Duration
	IdempotencyTTL            time.Duration
	CheckoutRateLimit         string
	CORSAllowedOrigins        []string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:                    valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                      valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:                  k.String("REDIS_URL"),
		WooBaseURL:                strings.TrimRight(strings.TrimSpace(k.String("WOO_BASE_URL")), "/"),
		WooConsumerKey:            k.String("WOO_CONSUMER_KEY"),
		WooConsumerSecret:         k.String("WOO_CONSUMER_SECRET"),
		StoreTimezone:             valueOrDefault(k.String("STORE_TIMEZONE"), "America/Santiago"),
		StoreLocale:               valueOrDefault(k.String("STORE_LOCALE"), "es-CL"),
		CurrencySymbol:            valueOrDefault(k.String("STORE_CURRENCY_SYMBOL"), "$"),
		BusinessName:              strings.TrimSpace(k.String("BUSINESS_NAME")),
		BusinessAddress:           strings.TrimSpace(k.String("BUSINESS_ADDRESS")),
		BusinessCity:              strings.TrimSpace(k.String("BUSINESS_CITY")),
		CartTTL:                   parseDuration(k.String("CART_TTL"), "168h"),
		SessionSnapshotTTL:        parseDuration(k.String("SESSION_SNAPSHOT_TTL"), "10m"),
		SessionRefreshInterval:    parseDuration(k.String("SESSION_REFRESH_INTERVAL"), "5m"),
		PendingAmountThreshold:    parseInt(k.String("PENDING_AMOUNT_THRESHOLD"), 10000),
		DefaultShippingFee:        parseInt(k.String("DEFAULT_SHIPPING_FEE"), 2500),
		DefaultFreeShippingAmount: parseInt(k.String("DEFAULT_FREE_SHIPPING_AMOUNT"), 20000),
		ExtraIngredientPrice:      parseInt(k.String("EXTRA_INGREDIENT_PRICE"), 1500),
		NotifyWebhookURL:          strings.TrimSpace(k.String("NOTIFY_WEBHOOK_URL")),
		NotifyWebhookSecret:       k.String("NOTIFY_WEBHOOK_SECRET"),
		NotifyWhatsAppPhone:       strings.TrimSpace(k.String("NOTIFY_WHATSAPP_PHONE")),
		NotifyLogSummaries:        parseBool(k.String("NOTIFY_LOG_SUMMARIES")),
		UpstreamTimeout:           parseDuration(k.String("UPSTREAM_TIMEOUT"), "5s"),
		IdempotencyTTL:            parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		CheckoutRateLimit:         valueOrDefault(k.String("CHECKOUT_RATE_LIMIT"), "10-M"),
		CORSAllowedOrigins:        splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.WooBaseURL == "" {
		return nil, errors.New("WOO_BASE_URL is required")
	}
	if _, err := time.LoadLocation(cfg.StoreTimezone); err != nil {
		return nil, fmt.Errorf("STORE_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// Location returns the store's time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StoreTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
