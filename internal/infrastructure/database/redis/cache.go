package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
	"golang.org/x/sync/singleflight"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// nullMarker records a loader that produced nothing.
const nullMarker = "__null__"

// Cache is a JSON value cache with single-flight loading.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// GetOrSet fills dest from the cache, or from loader on a miss.
	// Concurrent misses on one key share a single loader call.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	Ping(ctx context.Context) error
}

type redisCache struct {
	client       *Client
	logger       logging.Logger
	defaultTTL   time.Duration
	nullCacheTTL time.Duration
	jitter       float64
	group        singleflight.Group
}

type CacheOption func(*redisCache)

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

func WithNullCacheTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.nullCacheTTL = ttl }
}

// WithJitter spreads TTLs by +/- frac so keys written together do not expire
// together.  Zero disables it.
func WithJitter(frac float64) CacheOption {
	return func(c *redisCache) { c.jitter = frac }
}

func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client:       client,
		logger:       log.Named("redis-cache"),
		defaultTTL:   10 * time.Minute,
		nullCacheTTL: 30 * time.Second,
		jitter:       0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if c.jitter <= 0 {
		return ttl
	}
	return ttl + time.Duration(float64(ttl)*c.jitter*(rand.Float64()*2-1))
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client.isClosed() {
		return ErrClientClosed
	}
	data, err := c.client.rdb.Get(ctx, c.client.Key(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache get failed")
	}
	if string(data) == nullMarker {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client.isClosed() {
		return ErrClientClosed
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	if err := c.client.rdb.Set(ctx, c.client.Key(key), data, c.ttl(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set failed")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if c.client.isClosed() {
		return ErrClientClosed
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.client.Key(k)
	}
	if err := c.client.rdb.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
	}
	return nil
}

func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err != ErrCacheMiss {
		return err
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if v == nil {
			if setErr := c.client.rdb.Set(ctx, c.client.Key(key), nullMarker, c.nullCacheTTL).Err(); setErr != nil {
				c.logger.Warn("failed to cache empty result", logging.String("key", key), logging.Err(setErr))
			}
			return nil, nil
		}
		if setErr := c.Set(ctx, key, v, ttl); setErr != nil {
			c.logger.Warn("failed to populate cache", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	if val == nil {
		return ErrCacheMiss
	}

	// Shared results are copied through JSON so callers never alias.
	data, err := json.Marshal(val)
	if err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

//Personal.AI order the ending
