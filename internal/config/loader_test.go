package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8080
  mode: debug
database:
  host: db.internal
  port: 5432
  user: renewals
  password: secret
  db_name: renewals
redis:
  addr: localhost:6379
kafka:
  enabled: true
  brokers: ["localhost:9092"]
  group_id: renewals-worker
renewal:
  instructions: ["undecided", "pay", "abandon", "hold"]
  domestic_country: US
currency:
  base_currency: USD
  strict_base: true
  cache_ttl: 5m
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"undecided", "pay", "abandon", "hold"}, cfg.Renewal.Instructions)
	assert.Equal(t, 5*time.Minute, cfg.Currency.CacheTTL)
	assert.True(t, cfg.Currency.StrictBase)
	assert.Equal(t, "console", cfg.Log.Format)
	// defaulted
	assert.Equal(t, "pay", cfg.Renewal.PayInstruction)
	assert.Equal(t, "NULL", cfg.Renewal.NullCurrency)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "renewal: [\n"))
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server:\n  port: 70000\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("KEYIP_SERVER_PORT", "9999")
	t.Setenv("KEYIP_DATABASE_HOST", "db-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db-from-env", cfg.Database.Host)
}

func TestLoadFromEnv_DefaultsOnly(t *testing.T) {
	t.Setenv("KEYIP_RENEWAL_DOMESTIC_COUNTRY", "CA")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "CA", cfg.Renewal.DomesticCountry)
}

func TestLoadOrEnv_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := LoadOrEnv("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "nope.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "nope.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	changed := make(chan *Config, 4)

	require.NoError(t, Watch(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}, nil))

	updated := validConfigYAML + "\nmetrics:\n  namespace: renewals_test\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Metrics.Namespace == "renewals_test" {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

//Personal.AI order the ending
