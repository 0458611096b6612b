package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// DistributedLock is a single-owner lock on one key.
type DistributedLock interface {
	Lock(ctx context.Context) error
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	Extend(ctx context.Context, ttl time.Duration) (bool, error)
}

type LockOption func(*lockConfig)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(c *lockConfig) { c.ttl = ttl }
}

func WithRetry(count int, delay time.Duration) LockOption {
	return func(c *lockConfig) { c.retryCount, c.retryDelay = count, delay }
}

// WithWatchdog keeps extending a held lock every interval until Unlock.
func WithWatchdog(interval time.Duration) LockOption {
	return func(c *lockConfig) { c.watchdogInterval = interval }
}

type lockConfig struct {
	ttl              time.Duration
	retryDelay       time.Duration
	retryCount       int
	watchdogInterval time.Duration
}

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

type redisMutex struct {
	client *Client
	key    string
	value  string
	config lockConfig
	logger logging.Logger

	mu             sync.Mutex
	watchdogCancel context.CancelFunc
	watchdogDone   chan struct{}
}

// NewMutex returns an unlocked mutex on name.  Each mutex carries its own
// owner token.
func NewMutex(client *Client, name string, log logging.Logger, opts ...LockOption) DistributedLock {
	if log == nil {
		log = logging.NewNopLogger()
	}
	cfg := lockConfig{
		ttl:        30 * time.Second,
		retryDelay: 100 * time.Millisecond,
		retryCount: 30,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &redisMutex{
		client: client,
		key:    client.Key("lock:" + name),
		value:  uuid.NewString(),
		config: cfg,
		logger: log,
	}
}

func (m *redisMutex) Lock(ctx context.Context) error {
	for i := 0; i < m.config.retryCount; i++ {
		ok, err := m.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.config.retryDelay):
		}
	}
	return ErrLockNotAcquired.WithDetail(m.key)
}

func (m *redisMutex) TryLock(ctx context.Context) (bool, error) {
	if m.client.isClosed() {
		return false, ErrClientClosed
	}
	ok, err := m.client.rdb.SetNX(ctx, m.key, m.value, m.config.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock")
	}
	if ok && m.config.watchdogInterval > 0 {
		m.startWatchdog()
	}
	return ok, nil
}

func (m *redisMutex) Unlock(ctx context.Context) error {
	m.stopWatchdog()
	res, err := unlockScript.Run(ctx, m.client.rdb, []string{m.key}, m.value).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if res == 0 {
		return ErrLockNotHeld.WithDetail(m.key)
	}
	return nil
}

func (m *redisMutex) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	res, err := extendScript.Run(ctx, m.client.rdb, []string{m.key}, m.value, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to extend lock")
	}
	return res == 1, nil
}

func (m *redisMutex) startWatchdog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	m.watchdogCancel = cancel
	m.watchdogDone = make(chan struct{})
	go runWatchdog(ctx, m.Extend, m.config.watchdogInterval, m.config.ttl, m.logger, m.watchdogDone)
}

func (m *redisMutex) stopWatchdog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watchdogCancel != nil {
		m.watchdogCancel()
		<-m.watchdogDone
		m.watchdogCancel = nil
	}
}

func runWatchdog(ctx context.Context, extend func(context.Context, time.Duration) (bool, error), interval, ttl time.Duration, log logging.Logger, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := extend(ctx, ttl)
			if err != nil {
				if ctx.Err() == nil {
					log.Error("watchdog failed to extend lock", logging.Err(err))
				}
				return
			}
			if !ok {
				log.Warn("watchdog lost lock")
				return
			}
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Locker
// ─────────────────────────────────────────────────────────────────────────────

// Locker hands out named mutexes for one-shot critical sections such as a
// price refresh.
type Locker struct {
	client *Client
	logger logging.Logger
	opts   []LockOption
}

func NewLocker(client *Client, log logging.Logger, opts ...LockOption) *Locker {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Locker{client: client, logger: log.Named("redis-lock"), opts: opts}
}

// TryLock attempts name once.  ok is false when someone else holds it.
func (l *Locker) TryLock(ctx context.Context, name string) (func(context.Context) error, bool, error) {
	m := NewMutex(l.client, name, l.logger, l.opts...)
	ok, err := m.TryLock(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return m.Unlock, true, nil
}

//Personal.AI order the ending
