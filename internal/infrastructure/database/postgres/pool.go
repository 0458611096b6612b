package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// NewConnectionPool opens a pgx pool over the same database.  The currency
// table's bulk replace runs on it.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid database configuration")
	}
	configurePool(poolCfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("pgx pool ready", logging.Int("max_conns", int(poolCfg.MaxConns)))
	return pool, nil
}

// configurePool copies the non-zero settings of cfg onto poolCfg.
func configurePool(poolCfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
}

// WithTransaction runs fn in a transaction on pool.  fn's error or panic
// rolls back; otherwise the transaction commits.
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx, txCtx context.Context) error) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return fn(tx, ctx)
	})
}

// Close closes pool if non-nil.
func Close(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}

//Personal.AI order the ending
