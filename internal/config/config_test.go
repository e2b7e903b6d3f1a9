package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "https://fakestoreapi.com", cfg.CatalogBaseURL)
	assert.Equal(t, 10*time.Second, cfg.CatalogTimeout())
	assert.Equal(t, 2, cfg.CatalogMaxRetries)
	assert.Equal(t, time.Hour, cfg.CatalogCacheTTL())
	assert.Equal(t, 30*time.Minute, cfg.CatalogRefreshInterval())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.EventsEnabled())
	assert.False(t, cfg.OTELEnabled)
}

func TestLoad_OptionalBackends(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_RefreshDisabled(t *testing.T) {
	t.Setenv("CATALOG_REFRESH_INTERVAL_MINUTES", "0")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Zero(t, cfg.CatalogRefreshInterval())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		wantErr string
	}{
		{"port zero", "STOREFRONT_HTTP_PORT", "0", "invalid HTTP port"},
		{"port too large", "STOREFRONT_HTTP_PORT", "70000", "invalid HTTP port"},
		{"relative catalog url", "CATALOG_BASE_URL", "/products", "CATALOG_BASE_URL"},
		{"ftp catalog url", "CATALOG_BASE_URL", "ftp://example.com", "CATALOG_BASE_URL"},
		{"zero timeout", "CATALOG_TIMEOUT_SECONDS", "0", "CATALOG_TIMEOUT_SECONDS"},
		{"negative retries", "CATALOG_MAX_RETRIES", "-1", "CATALOG_MAX_RETRIES"},
		{"negative refresh interval", "CATALOG_REFRESH_INTERVAL_MINUTES", "-5", "CATALOG_REFRESH_INTERVAL_MINUTES"},
		{"zero cache ttl", "CATALOG_CACHE_TTL_MINUTES", "0", "CATALOG_CACHE_TTL_MINUTES"},
		{"sample rate", "OTEL_SAMPLE_RATE", "2.0", "OTEL_SAMPLE_RATE must be between 0.0 and 1.0"},
		{"non-numeric port", "STOREFRONT_HTTP_PORT", "http", "load storefront config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
