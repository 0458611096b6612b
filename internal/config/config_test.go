package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Database.Password = "secret"
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"server port", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"server mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"database host", func(c *config.Config) { c.Database.Host = "" }, "database.host"},
		{"database user", func(c *config.Config) { c.Database.User = "" }, "database.user"},
		{"database name", func(c *config.Config) { c.Database.DBName = "" }, "database.db_name"},
		{"redis addr", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"kafka brokers", func(c *config.Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}, "kafka.brokers"},
		{"jwt secret", func(c *config.Config) { c.Auth.Enabled = true }, "auth.jwt_secret"},
		{"empty instructions", func(c *config.Config) { c.Renewal.Instructions = nil }, "renewal.instructions"},
		{"duplicate instruction", func(c *config.Config) {
			c.Renewal.Instructions = []string{"pay", "pay"}
		}, "duplicate"},
		{"pay not member", func(c *config.Config) {
			c.Renewal.Instructions = []string{"undecided", "abandon"}
		}, "renewal.pay_instruction"},
		{"base currency", func(c *config.Config) { c.Currency.BaseCurrency = "DOLLAR" }, "currency.base_currency"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_Validate_KafkaDisabledSkipsBrokers(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Kafka.Enabled = false
	cfg.Kafka.Brokers = nil
	assert.NoError(t, cfg.Validate())
}

func TestLogConfig_Logging(t *testing.T) {
	t.Parallel()
	lc := config.LogConfig{Level: "debug", Format: "console", Service: "renewals"}
	out := lc.Logging()
	assert.Equal(t, "debug", out.Level)
	assert.Equal(t, "console", out.Format)
	assert.Equal(t, "renewals", out.Service)
}

//Personal.AI order the ending
