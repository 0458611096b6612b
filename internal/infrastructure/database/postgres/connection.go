package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// sqlOpen is a variable to allow mocking in tests.
var sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

const (
	defaultMaxIdleConns     = 10
	defaultConnMaxLifetime  = 30 * time.Minute
	defaultConnMaxIdleTime  = 5 * time.Minute
	defaultStatementTimeout = 30 * time.Second
	defaultLockTimeout      = 10 * time.Second
)

// Connection manages the database/sql pool the repositories run on.
type Connection struct {
	db     *sql.DB
	cfg    config.DatabaseConfig
	logger logging.Logger
	once   sync.Once
}

// NewConnection opens and pings a pool.
func NewConnection(cfg config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	db, err := sqlOpen("postgres", buildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open database connection")
	}

	db.SetMaxOpenConns(orInt(cfg.MaxConns, config.DefaultDBMaxConns))
	db.SetMaxIdleConns(orInt(cfg.MaxIdleConns, defaultMaxIdleConns))
	db.SetConnMaxLifetime(orDuration(cfg.ConnMaxLifetime, defaultConnMaxLifetime))
	db.SetConnMaxIdleTime(orDuration(cfg.ConnMaxIdleTime, defaultConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("Connected to PostgreSQL database",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)
	return &Connection{db: db, cfg: cfg, logger: log}, nil
}

// NewConnectionWithDB wraps an existing sql.DB (for testing).
func NewConnectionWithDB(db *sql.DB, log logging.Logger) *Connection {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Connection{db: db, logger: log}
}

// DB returns the underlying sql.DB instance.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// HealthCheck pings the pool and warns when it runs hot.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}

	stats := c.Stats()
	if stats.OpenConnections > 0 {
		usage := float64(stats.InUse) / float64(stats.OpenConnections)
		if usage > 0.8 {
			c.logger.Warn("High database connection pool usage",
				logging.Int("in_use", stats.InUse),
				logging.Int("open", stats.OpenConnections),
				logging.Float64("usage", usage),
			)
		}
	}
	return nil
}

// Stats returns pool statistics.
func (c *Connection) Stats() sql.DBStats {
	return c.db.Stats()
}

// Close closes the pool once.
func (c *Connection) Close() error {
	var err error
	c.once.Do(func() {
		err = c.db.Close()
		if err == nil {
			c.logger.Info("Closed PostgreSQL database connection")
		} else {
			c.logger.Error("Failed to close PostgreSQL database connection", logging.Err(err))
		}
	})
	return err
}

// RunMigrations applies every pending migration from path, or from the
// embedded set when path is empty.
func (c *Connection) RunMigrations(path string) error {
	m, err := NewMigrator(c.db, path, c.logger)
	if err != nil {
		return err
	}
	return m.Up()
}

// buildDSN renders cfg as a postgres:// URL.  Both lib/pq and pgx accept it.
func buildDSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   cfg.DBName,
	}

	q := u.Query()
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	} else {
		q.Set("sslmode", "disable")
	}
	q.Set("statement_timeout", fmt.Sprintf("%d", defaultStatementTimeout.Milliseconds()))
	q.Set("lock_timeout", fmt.Sprintf("%d", defaultLockTimeout.Milliseconds()))

	u.RawQuery = q.Encode()
	return u.String()
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}

//Personal.AI order the ending
