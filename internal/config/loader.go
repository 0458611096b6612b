// Package config provides configuration loading, defaults, and validation for
// the KeyIP-Renewals service.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "KEYIP"

// bindKeys lists every leaf key so that AutomaticEnv overrides are honoured by
// Unmarshal even when the key is absent from the YAML file.
var bindKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_body_size", "server.shutdown_timeout", "server.rate_limit", "server.rate_burst",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns", "database.min_conns",
	"database.max_idle_conns", "database.conn_max_lifetime", "database.conn_max_idle_time",
	"database.migration_path", "database.auto_migrate",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"kafka.brokers", "kafka.group_id", "kafka.client_id", "kafka.auto_offset_reset",
	"kafka.write_timeout", "kafka.batch_size", "kafka.max_retries", "kafka.required_acks",
	"kafka.retry_backoff", "kafka.dead_letter_topic", "kafka.enabled",
	"log.level", "log.format", "log.output_paths", "log.service",
	"auth.enabled", "auth.jwt_secret", "auth.issuer", "auth.user_claim",
	"renewal.instructions", "renewal.pay_instruction", "renewal.null_currency",
	"renewal.default_currency", "renewal.domestic_country", "renewal.max_batch_size",
	"currency.base_currency", "currency.strict_base", "currency.cache_ttl", "currency.cache_key",
	"metrics.enabled", "metrics.port", "metrics.path", "metrics.namespace",
}

// newViper builds a Viper instance with the standard settings: YAML file type,
// KEYIP_ env prefix, and a "." -> "_" key replacer so that "database.host"
// resolves to KEYIP_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range bindKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges KEYIP_* overrides, applies
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from KEYIP_* environment variables only.
//
//	KEYIP_<SECTION>_<FIELD>   e.g.  KEYIP_DATABASE_HOST, KEYIP_RENEWAL_INSTRUCTIONS
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrEnv loads configPath when it is non-empty, otherwise falls back to
// LoadFromEnv.  The binaries call this with their --config flag value.
func LoadOrEnv(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config on
// every write.  A change that fails to parse or validate is reported through
// onError (when non-nil) and onChange is skipped.  Callers apply only the
// runtime-safe subset (log level, instruction set).
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps Load and panics on error.  main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
