// Package config defines the configuration structures for the KeyIP-Renewals
// service.  No I/O lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"` // requests/s per caller; 0 disables
	RateBurst       int           `mapstructure:"rate_burst"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"` // empty uses the embedded set
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds producer/consumer parameters.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	ClientID        string        `mapstructure:"client_id"`
	AutoOffsetReset string        `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	BatchSize       int           `mapstructure:"batch_size"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RequiredAcks    int           `mapstructure:"required_acks"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
	Enabled         bool          `mapstructure:"enabled"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
	Service     string   `mapstructure:"service"`
}

// Logging converts the section into the logger factory's parameters.
func (l LogConfig) Logging() logging.LogConfig {
	return logging.LogConfig{
		Level:       l.Level,
		Format:      l.Format,
		OutputPaths: l.OutputPaths,
		Service:     l.Service,
	}
}

// AuthConfig holds bearer-token verification parameters.
type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	// UserClaim names the claim that carries the acting user's identifier.
	UserClaim string `mapstructure:"user_claim"`
}

// RenewalConfig holds the renewal engine's business settings.
type RenewalConfig struct {
	// Instructions is the closed set of accepted instruction values.
	Instructions []string `mapstructure:"instructions"`
	// PayInstruction is the member of Instructions that counts toward totals.
	PayInstruction string `mapstructure:"pay_instruction"`
	// NullCurrency is the provider's "no currency given" sentinel.
	NullCurrency string `mapstructure:"null_currency"`
	// DefaultCurrency replaces NullCurrency before rate lookup.
	DefaultCurrency string `mapstructure:"default_currency"`
	// DomesticCountry selects us_price over fn_price during BHIP resolution.
	DomesticCountry string `mapstructure:"domestic_country"`
	// MaxBatchSize bounds one instruction update request.
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// CurrencyConfig holds currency-table settings.
type CurrencyConfig struct {
	BaseCurrency string        `mapstructure:"base_currency"`
	StrictBase   bool          `mapstructure:"strict_base"` // reject imports quoting BaseCurrency at anything but 1
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheKey     string        `mapstructure:"cache_key"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Port      int    `mapstructure:"port"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Each component reads its
// settings from the relevant sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Renewal  RenewalConfig  `mapstructure:"renewal"`
	Currency CurrencyConfig `mapstructure:"currency"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
	}

	// Auth
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required when auth is enabled")
	}

	// Renewal
	if len(c.Renewal.Instructions) == 0 {
		return fmt.Errorf("config: renewal.instructions must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Renewal.Instructions))
	for _, ins := range c.Renewal.Instructions {
		if strings.TrimSpace(ins) == "" {
			return fmt.Errorf("config: renewal.instructions contains an empty value")
		}
		if _, dup := seen[ins]; dup {
			return fmt.Errorf("config: renewal.instructions contains duplicate %q", ins)
		}
		seen[ins] = struct{}{}
	}
	if _, ok := seen[c.Renewal.PayInstruction]; !ok {
		return fmt.Errorf("config: renewal.pay_instruction %q is not a member of renewal.instructions", c.Renewal.PayInstruction)
	}
	if c.Renewal.MaxBatchSize < 1 {
		return fmt.Errorf("config: renewal.max_batch_size must be >= 1, got %d", c.Renewal.MaxBatchSize)
	}

	// Currency
	if len(c.Currency.BaseCurrency) != 3 {
		return fmt.Errorf("config: currency.base_currency %q must be a three-letter code", c.Currency.BaseCurrency)
	}

	// Metrics
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("config: metrics.port %d is out of range [1, 65535]", c.Metrics.Port)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
