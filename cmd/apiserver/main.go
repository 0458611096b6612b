// Command apiserver serves the renewal HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Renewals/internal/bootstrap"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/KeyIP-Renewals/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/middleware"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const (
	eventSource        = "renewal-api"
	rateLimitCleanup   = time.Minute
	dbPoolSamplePeriod = 15 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: KEYIP_* environment)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	if err := run(cfg, *configPath, logger); err != nil {
		logger.Error("api server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, logger logging.Logger) error {
	logger.Info("starting renewal api server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("build_date", buildDate),
		logging.Int("http_port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	if cfg.Database.AutoMigrate {
		m, err := infra.Migrator(cfg)
		if err != nil {
			return err
		}
		if err := m.Up(); err != nil {
			return err
		}
	}

	services, err := bootstrap.BuildServices(cfg, infra, eventSource, logger)
	if err != nil {
		return err
	}

	if configPath != "" {
		watchConfig(configPath, logger)
	}

	var limiter *middleware.TokenBucketLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = middleware.NewTokenBucketLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, rateLimitCleanup)
		defer limiter.Stop()
	}

	routerCfg := httpserver.RouterConfig{
		Mode:             cfg.Server.Mode,
		RenewalHandler:   handlers.NewRenewalHandler(services.Renewals, logger),
		PortfolioHandler: handlers.NewPortfolioHandler(services.Renewals, logger),
		CurrencyHandler:  handlers.NewCurrencyHandler(services.Currencies, logger),
		HealthHandler:    handlers.NewHealthHandler(version, infra.HealthCheckers()...),
		AuthMiddleware: middleware.NewAuthMiddleware(
			middleware.NewJWTValidator(cfg.Auth), cfg.Auth.Enabled, nil, logger),
		HTTPMetrics: infra.Metrics,
		MaxBodySize: cfg.Server.MaxBodySize,
		Logger:      logger,
	}
	if limiter != nil {
		routerCfg.RateLimiter = limiter
	}
	separateMetrics := cfg.Metrics.Enabled && cfg.Metrics.Port != cfg.Server.Port
	if cfg.Metrics.Enabled && !separateMetrics {
		routerCfg.MetricsHandler = infra.Collector.Handler()
	}

	api := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(api.Start)
	g.Go(func() error {
		<-gctx.Done()
		return api.Stop(context.Background())
	})

	if separateMetrics {
		metricsSrv := newMetricsServer(cfg.Metrics, infra.Collector.Handler())
		g.Go(func() error {
			logger.Info("metrics server listening", logging.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		infra.SampleDBPool(gctx, dbPoolSamplePeriod)
		return nil
	})

	err = g.Wait()
	logger.Info("renewal api server stopped")
	return err
}

func newMetricsServer(cfg config.MetricsConfig, h http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, h)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// watchConfig logs edits to the configuration file.  They apply on restart.
func watchConfig(path string, logger logging.Logger) {
	err := config.Watch(path, func(next *config.Config) {
		logger.Info("configuration file changed; restart to apply",
			logging.String("log_level", next.Log.Level))
	}, func(err error) {
		logger.Warn("ignoring invalid configuration change", logging.Err(err))
	})
	if err != nil {
		logger.Warn("configuration watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
