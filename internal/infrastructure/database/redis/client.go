// Package redis backs the currency-table cache and the price-refresh lock.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeInternal, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeCacheError, "redis connection failed")
)

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultDialTimeout  = 5 * time.Second
	defaultIOTimeout    = 3 * time.Second
)

// Client wraps a go-redis client with close tracking.
type Client struct {
	rdb    redis.UniversalClient
	prefix string
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient dials a standalone server and pings it.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(&cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	client := newClient(rdb, cfg.KeyPrefix, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err).WithDetail(cfg.Addr)
	}

	log.Info("redis client connected", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return client, nil
}

func newClient(rdb redis.UniversalClient, prefix string, log logging.Logger) *Client {
	return &Client{rdb: rdb, prefix: prefix, logger: log}
}

func applyDefaults(cfg *config.RedisConfig) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.MinIdleConns == 0 {
		cfg.MinIdleConns = defaultMinIdleConns
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultIOTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaultIOTimeout
	}
}

func (c *Client) Ping(ctx context.Context) error {
	if c.isClosed() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rdb.Close()
}

// Key prefixes name with the configured namespace.
func (c *Client) Key(name string) string {
	return c.prefix + name
}

func (c *Client) PoolStats() *redis.PoolStats {
	return c.rdb.PoolStats()
}

func (c *Client) Underlying() redis.UniversalClient {
	return c.rdb
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

//Personal.AI order the ending
