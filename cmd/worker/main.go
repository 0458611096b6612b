// Command worker consumes renewal domain events.  A currency rate import
// triggers a price refresh over every stored renewal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Renewals/internal/bootstrap"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/KeyIP-Renewals/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/worker"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const (
	eventSource        = "renewal-worker"
	defaultHealthPort  = 8081
	dbPoolSamplePeriod = 15 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: KEYIP_* environment)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz, /readyz and /metrics")
	handlerTimeout := flag.Duration("handler-timeout", 0, "bound on one message handler run (default 5m)")
	ensureTopics := flag.Bool("ensure-topics", false, "create missing topics before consuming")
	replication := flag.Int("replication", 1, "replication factor used with -ensure-topics")
	flag.Parse()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	opts := workerOptions{
		healthPort:     *healthPort,
		handlerTimeout: *handlerTimeout,
		ensureTopics:   *ensureTopics,
		replication:    *replication,
	}
	if err := run(cfg, opts, logger); err != nil {
		logger.Error("worker exited with error", logging.Err(err))
		os.Exit(1)
	}
}

type workerOptions struct {
	healthPort     int
	handlerTimeout time.Duration
	ensureTopics   bool
	replication    int
}

func run(cfg *config.Config, opts workerOptions, logger logging.Logger) error {
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka.enabled is false; the worker has nothing to consume")
	}
	logger.Info("starting renewal worker",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("build_date", buildDate),
		logging.String("group", cfg.Kafka.GroupID))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.ensureTopics {
		if err := ensureKafkaTopics(ctx, cfg, opts.replication, logger); err != nil {
			return err
		}
	}

	infra, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	services, err := bootstrap.BuildServices(cfg, infra, eventSource, logger)
	if err != nil {
		return err
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka, logger,
		kafka.WithConsumerMetrics(infra.Metrics),
		kafka.WithDeadLetter(infra.Producer),
	)
	if err != nil {
		return err
	}
	worker.NewHandlers(services.Renewals, logger, worker.WithHandlerTimeout(opts.handlerTimeout)).Register(consumer)

	healthCfg := cfg.Server
	healthCfg.Port = opts.healthPort
	health := httpserver.NewServer(healthCfg, httpserver.NewRouter(httpserver.RouterConfig{
		Mode:           cfg.Server.Mode,
		HealthHandler:  handlers.NewHealthHandler(version, infra.HealthCheckers()...),
		MetricsHandler: infra.Collector.Handler(),
		Logger:         logger,
	}), logger)

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(health.Start)
	g.Go(func() error {
		<-gctx.Done()
		return health.Stop(context.Background())
	})
	g.Go(func() error {
		<-gctx.Done()
		return consumer.Close()
	})
	g.Go(func() error {
		infra.SampleDBPool(gctx, dbPoolSamplePeriod)
		return nil
	})

	err = g.Wait()
	logger.Info("renewal worker stopped")
	return err
}

func ensureKafkaTopics(ctx context.Context, cfg *config.Config, replication int, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		return err
	}
	defer tm.Close()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(replication))
}

//Personal.AI order the ending
