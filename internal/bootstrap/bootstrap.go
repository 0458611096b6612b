// Package bootstrap opens the backing stores and assembles the application
// services.  The three binaries share it so that a renewal priced by the API,
// the worker and renewalctl goes through identical wiring.
package bootstrap

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	appCurrency "github.com/turtacn/KeyIP-Renewals/internal/application/currency"
	"github.com/turtacn/KeyIP-Renewals/internal/application/events"
	appRenewal "github.com/turtacn/KeyIP-Renewals/internal/application/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	domainPortfolio "github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

const (
	// refreshLockTTL bounds a crashed refresher's hold on the lock; the
	// watchdog keeps a live one extended.
	refreshLockTTL      = 2 * time.Minute
	refreshLockWatchdog = 30 * time.Second
)

// Infrastructure holds every open client.  Producer is nil when Kafka is
// disabled.
type Infrastructure struct {
	Conn      *postgres.Connection
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Cache     redis.Cache
	Locker    *redis.Locker
	Producer  *kafka.Producer
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	logger logging.Logger
}

// Open connects to PostgreSQL, Redis and (when enabled) Kafka.  Whatever was
// opened before a failure is closed again.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *Infrastructure, err error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	infra := &Infrastructure{logger: logger.Named("bootstrap")}
	defer func() {
		if err != nil {
			infra.Close()
		}
	}()

	infra.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, err
	}
	infra.Metrics = prometheus.NewAppMetrics(infra.Collector)

	if infra.Conn, err = postgres.NewConnection(cfg.Database, logger); err != nil {
		return nil, err
	}
	if infra.Pool, err = postgres.NewConnectionPool(ctx, cfg.Database, logger); err != nil {
		return nil, err
	}

	if infra.Redis, err = redis.NewClient(cfg.Redis, logger); err != nil {
		return nil, err
	}
	infra.Cache = redis.NewRedisCache(infra.Redis, logger, redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
	infra.Locker = redis.NewLocker(infra.Redis, logger,
		redis.WithLockTTL(refreshLockTTL),
		redis.WithWatchdog(refreshLockWatchdog),
	)

	if cfg.Kafka.Enabled {
		infra.Producer, err = kafka.NewProducer(cfg.Kafka, logger, kafka.WithProducerMetrics(infra.Metrics))
		if err != nil {
			return nil, err
		}
	}

	infra.logger.Info("infrastructure ready",
		logging.String("database", cfg.Database.Host),
		logging.String("redis", cfg.Redis.Addr),
		logging.Bool("kafka", cfg.Kafka.Enabled))
	return infra, nil
}

// Publisher returns the event sink for source: Kafka when enabled, else a
// no-op.
func (i *Infrastructure) Publisher(source string) events.Publisher {
	if i.Producer == nil {
		return events.Nop
	}
	return kafka.NewEventPublisher(i.Producer, source)
}

// Migrator returns a schema migrator on the shared connection.
func (i *Infrastructure) Migrator(cfg *config.Config) (*postgres.Migrator, error) {
	return postgres.NewMigrator(i.Conn.DB(), cfg.Database.MigrationPath, i.logger)
}

// HealthCheckers lists the readiness probes for the open stores.
func (i *Infrastructure) HealthCheckers() []handlers.HealthChecker {
	checkers := []handlers.HealthChecker{
		handlers.CheckerFunc{ComponentName: "postgres", Fn: i.Conn.HealthCheck},
		handlers.CheckerFunc{ComponentName: "redis", Fn: i.Redis.Ping},
	}
	if i.Pool != nil {
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "postgres-pool", Fn: i.Pool.Ping})
	}
	return checkers
}

// SampleDBPool publishes connection pool gauges every interval until ctx ends.
func (i *Infrastructure) SampleDBPool(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := i.Conn.Stats()
			i.Metrics.DBPool(st.OpenConnections, st.InUse)
		}
	}
}

// Close releases every client in reverse order of Open.
func (i *Infrastructure) Close() {
	if i.Producer != nil {
		if err := i.Producer.Close(); err != nil {
			i.logger.Warn("kafka producer close failed", logging.Err(err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if i.Pool != nil {
		i.Pool.Close()
	}
	if i.Conn != nil {
		if err := i.Conn.Close(); err != nil {
			i.logger.Warn("postgres close failed", logging.Err(err))
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Services
// ─────────────────────────────────────────────────────────────────────────────

// Services are the application services over one Infrastructure.
type Services struct {
	Renewals   *appRenewal.Service
	Currencies *appCurrency.Service
}

// BuildServices assembles the renewal and currency services.  source tags
// emitted events with the calling binary.
func BuildServices(cfg *config.Config, infra *Infrastructure, source string, logger logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	publisher := infra.Publisher(source)

	currencyRepo := repositories.NewPostgresCurrencyRepo(infra.Pool, logger)
	cached := appCurrency.NewCachedSource(currencyRepo, infra.Cache,
		cfg.Currency.CacheKey, cfg.Currency.CacheTTL, infra.Metrics, logger)
	currencies, err := appCurrency.NewService(currencyRepo, cached, logger,
		appCurrency.WithBaseCurrency(cfg.Currency.BaseCurrency),
		appCurrency.WithStrictBase(cfg.Currency.StrictBase),
		appCurrency.WithPublisher(publisher),
		appCurrency.WithMetrics(infra.Metrics),
	)
	if err != nil {
		return nil, err
	}

	set, err := domainRenewal.NewInstructionSet(cfg.Renewal.Instructions, cfg.Renewal.PayInstruction)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid renewal instruction set")
	}

	portfolios := repositories.NewPostgresPortfolioRepo(infra.Conn, logger)
	renewals, err := appRenewal.NewService(
		repositories.NewPostgresRenewalRepo(infra.Conn, logger),
		portfolios,
		currencies.Source(),
		logger,
		appRenewal.WithInstructionSet(set),
		appRenewal.WithBhipResolver(domainPortfolio.NewBhipResolver(portfolios,
			domainPortfolio.WithDomesticCountry(cfg.Renewal.DomesticCountry))),
		appRenewal.WithCalculatorOptions(
			domainCurrency.WithNullCurrency(cfg.Renewal.NullCurrency, cfg.Renewal.DefaultCurrency)),
		appRenewal.WithPublisher(publisher),
		appRenewal.WithMetrics(infra.Metrics),
		appRenewal.WithLocker(infra.Locker),
		appRenewal.WithMaxBatchSize(cfg.Renewal.MaxBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Services{Renewals: renewals, Currencies: currencies}, nil
}

//Personal.AI order the ending
