package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Product catalog upstream
	CatalogBaseURL        string `env:"CATALOG_BASE_URL" envDefault:"https://fakestoreapi.com"`
	CatalogTimeoutSeconds int    `env:"CATALOG_TIMEOUT_SECONDS" envDefault:"10"`
	CatalogMaxRetries     int    `env:"CATALOG_MAX_RETRIES" envDefault:"2"`
	// Periodic upstream refresh; 0 disables it.
	CatalogRefreshMins int `env:"CATALOG_REFRESH_INTERVAL_MINUTES" envDefault:"30"`

	// Redis catalog cache; disabled when RedisAddr is empty.
	RedisAddr           string `env:"REDIS_ADDR"`
	RedisPass           string `env:"REDIS_PASSWORD"`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0"`
	CatalogCacheTTLMins int    `env:"CATALOG_CACHE_TTL_MINUTES" envDefault:"60"`

	// Kafka cart events; disabled when no brokers are set.
	KafkaBrokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	CartEventsTopic string   `env:"CART_EVENTS_TOPIC" envDefault:"storefront.cart.action_applied"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CATALOG_BASE_URL must be an absolute http(s) URL, got %q", c.CatalogBaseURL)
	}
	if c.CatalogTimeoutSeconds < 1 {
		return fmt.Errorf("CATALOG_TIMEOUT_SECONDS must be positive, got %d", c.CatalogTimeoutSeconds)
	}
	if c.CatalogMaxRetries < 0 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must not be negative, got %d", c.CatalogMaxRetries)
	}
	if c.CatalogRefreshMins < 0 {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL_MINUTES must not be negative, got %d", c.CatalogRefreshMins)
	}
	if c.CatalogCacheTTLMins < 1 {
		return fmt.Errorf("CATALOG_CACHE_TTL_MINUTES must be positive, got %d", c.CatalogCacheTTLMins)
	}
	if len(c.KafkaBrokers) > 0 && c.CartEventsTopic == "" {
		return fmt.Errorf("CART_EVENTS_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// CatalogTimeout returns the per-request timeout for catalog fetches.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}

// CatalogRefreshInterval returns how often the catalog is refetched from
// upstream, or zero when periodic refresh is off.
func (c *Config) CatalogRefreshInterval() time.Duration {
	return time.Duration(c.CatalogRefreshMins) * time.Minute
}

// CatalogCacheTTL returns how long a cached catalog stays valid.
func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLMins) * time.Minute
}

func (c *Config) CacheEnabled() bool  { return c.RedisAddr != "" }
func (c *Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }
