package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 15 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second
	DefaultServerMaxBodySize     = 4 << 20

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBUser     = "renewals"
	DefaultDBName     = "renewals"
	DefaultDBMaxConns = 25

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisTTL  = 30 * time.Minute
	DefaultRedisKey  = "renewals:"

	DefaultKafkaBroker   = "localhost:9092"
	DefaultKafkaGroupID  = "renewals-worker"
	DefaultKafkaClientID = "keyip-renewals"
	DefaultKafkaDLQTopic = "renewal.dead_letter"

	DefaultAuthUserClaim = "sub"

	DefaultPayInstruction  = "pay"
	DefaultNullCurrency    = "NULL"
	DefaultCurrencyCode    = "USD"
	DefaultDomesticCountry = "US"
	DefaultMaxBatchSize    = 500

	DefaultCurrencyCacheTTL = 10 * time.Minute
	DefaultCurrencyCacheKey = "currency:table"

	DefaultMetricsPort      = 9090
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "keyip_renewals"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultInstructions is the instruction set used when none is configured.
func DefaultInstructions() []string {
	return []string{"undecided", "pay", "abandon"}
}

// ApplyDefaults fills every zero-value field in cfg.  Explicitly set values
// are left unchanged.  It must run after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = int(cfg.Server.RateLimit) * 2
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKey
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = time.Second
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultKafkaDLQTopic
	}

	// ── Auth ──────────────────────────────────────────────────────────────────
	if cfg.Auth.UserClaim == "" {
		cfg.Auth.UserClaim = DefaultAuthUserClaim
	}

	// ── Renewal ───────────────────────────────────────────────────────────────
	if len(cfg.Renewal.Instructions) == 0 {
		cfg.Renewal.Instructions = DefaultInstructions()
	}
	if cfg.Renewal.PayInstruction == "" {
		cfg.Renewal.PayInstruction = DefaultPayInstruction
	}
	if cfg.Renewal.NullCurrency == "" {
		cfg.Renewal.NullCurrency = DefaultNullCurrency
	}
	if cfg.Renewal.DefaultCurrency == "" {
		cfg.Renewal.DefaultCurrency = DefaultCurrencyCode
	}
	if cfg.Renewal.DomesticCountry == "" {
		cfg.Renewal.DomesticCountry = DefaultDomesticCountry
	}
	if cfg.Renewal.MaxBatchSize == 0 {
		cfg.Renewal.MaxBatchSize = DefaultMaxBatchSize
	}

	// ── Currency ──────────────────────────────────────────────────────────────
	if cfg.Currency.BaseCurrency == "" {
		cfg.Currency.BaseCurrency = DefaultCurrencyCode
	}
	if cfg.Currency.CacheTTL == 0 {
		cfg.Currency.CacheTTL = DefaultCurrencyCacheTTL
	}
	if cfg.Currency.CacheKey == "" {
		cfg.Currency.CacheKey = DefaultCurrencyCacheKey
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = DefaultMetricsPort
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

//Personal.AI order the ending
