package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Storage
	StorageDriver    string `env:"STORAGE_DRIVER" envDefault:"memory"`
	StorageNamespace string `env:"STORAGE_NAMESPACE" envDefault:"storefront"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Slot TTL in hours for the redis driver (default: 30 days, 0 = no expiry)
	SlotTTLHours int `env:"SLOT_TTL_HOURS" envDefault:"720"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"STOREFRONT_DB_NAME" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Database pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"2"`

	// Storage operations slower than this are logged (0 disables)
	SlowStorageOpMillis int `env:"SLOW_STORAGE_OP_MS" envDefault:"200"`

	// SQLite
	SQLitePath string `env:"SQLITE_PATH" envDefault:"storefront.db"`

	// Sessions
	SessionIdleTimeoutMins int `env:"SESSION_IDLE_TIMEOUT_MINUTES" envDefault:"30"`

	// Per-session rate limit (0 disables)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Catalog (empty disables the by-id routes)
	CatalogURL        string `env:"CATALOG_URL" envDefault:""`
	CatalogTimeoutMS  int    `env:"CATALOG_TIMEOUT_MS" envDefault:"5000"`
	CatalogMaxRetries int    `env:"CATALOG_MAX_RETRIES" envDefault:"2"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return load()
}

// LoadFrom reads configuration from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(pkgconfig.WithEnvironment(environ))
}

func load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageDriver {
	case DriverMemory, DriverRedis, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageNamespace == "" {
		return fmt.Errorf("STORAGE_NAMESPACE is required")
	}
	if c.SlotTTLHours < 0 {
		return fmt.Errorf("SLOT_TTL_HOURS must not be negative, got %d", c.SlotTTLHours)
	}
	if c.SessionIdleTimeoutMins < 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT_MINUTES must not be negative, got %d", c.SessionIdleTimeoutMins)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	if c.CatalogTimeoutMS <= 0 || c.CatalogMaxRetries < 0 {
		return fmt.Errorf("catalog timeout must be positive and retries not negative")
	}
	if c.StorageDriver == DriverPostgres && c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required for the postgres driver")
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the pool configuration for the postgres driver.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.DBMaxConns
	pg.MinConns = c.DBMinConns
	return pg
}

// Catalog returns the upstream client settings for the catalog service.
func (c *Config) Catalog() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = time.Duration(c.CatalogTimeoutMS) * time.Millisecond
	hc.MaxRetries = c.CatalogMaxRetries
	return hc
}

// SlotTTL returns the redis slot TTL.
func (c *Config) SlotTTL() time.Duration {
	return time.Duration(c.SlotTTLHours) * time.Hour
}

// SlowStorageThreshold returns the slow storage operation threshold.
func (c *Config) SlowStorageThreshold() time.Duration {
	return time.Duration(c.SlowStorageOpMillis) * time.Millisecond
}

// SessionIdleTimeout returns the idle eviction timeout. Zero disables eviction.
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleTimeoutMins) * time.Minute
}
