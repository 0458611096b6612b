// internal/interfaces/http/middleware/ratelimit.go
//
// Per-caller token bucket.  Keys are the authenticated user id, falling back
// to the client IP, so the limiter must run after Authenticate.

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// RateLimiter decides whether one more request for key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the bucket state reported in response headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter keeps one bucket per key and evicts idle full buckets.
type TokenBucketLimiter struct {
	rate      float64
	burst     int
	idleAfter time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	buckets map[string]*tokenBucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewTokenBucketLimiter returns a limiter refilling rate tokens per second up
// to burst.  cleanupInterval <= 0 disables eviction.
func NewTokenBucketLimiter(rate float64, burst int, cleanupInterval time.Duration) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &TokenBucketLimiter{
		rate:      rate,
		burst:     burst,
		idleAfter: cleanupInterval,
		now:       time.Now,
		buckets:   make(map[string]*tokenBucket),
		stop:      make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop(cleanupInterval)
	}
	return l
}

// Allow takes one token from key's bucket when available.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if !ok {
		l.mu.Lock()
		if b, ok = l.buckets[key]; !ok {
			b = &tokenBucket{tokens: float64(l.burst), lastRefill: now}
			l.buckets[key] = b
		}
		l.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.lastRefill = now

	info := RateLimitInfo{Limit: l.burst, ResetAt: now.Add(time.Duration(float64(time.Second) / l.rate))}
	if b.tokens >= 1 {
		b.tokens--
		info.Remaining = int(b.tokens)
		return true, info
	}
	return false, info
}

func (l *TokenBucketLimiter) cleanupLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

func (l *TokenBucketLimiter) cleanup() {
	threshold := l.now().Add(-l.idleAfter)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		if b.lastRefill.Before(threshold) && b.tokens >= float64(l.burst)-1 {
			delete(l.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Stop ends the eviction loop.  Safe to call more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// BucketCount reports the number of tracked keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// RateLimit rejects requests over the caller's budget with 429.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id := UserID(c); id != "" {
			key = "user:" + id
		}
		allowed, info := limiter.Allow(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
		if allowed {
			c.Next()
			return
		}

		retry := int(time.Until(info.ResetAt).Seconds())
		if retry < 1 {
			retry = 1
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"code":    errors.ErrCodeRateLimited,
			"message": "rate limit exceeded",
		})
	}
}

//Personal.AI order the ending
