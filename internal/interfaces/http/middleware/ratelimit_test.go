package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_BurstThenRefill(t *testing.T) {
	l := NewTokenBucketLimiter(1, 2, 0)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, _ = l.Allow("a")
	assert.True(t, ok)
	ok, info = l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)

	// other keys have their own bucket
	ok, _ = l.Allow("b")
	assert.True(t, ok)

	now = now.Add(time.Second)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
}

func TestTokenBucketLimiter_CleanupEvictsIdle(t *testing.T) {
	l := NewTokenBucketLimiter(10, 1, 0)
	l.idleAfter = time.Minute
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("a")
	require.Equal(t, 1, l.BucketCount())

	now = now.Add(2 * time.Minute)
	l.mu.Lock()
	l.buckets["a"].tokens = 1
	l.mu.Unlock()
	l.cleanup()
	assert.Equal(t, 0, l.BucketCount())
}

func TestTokenBucketLimiter_StopIsIdempotent(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, time.Hour)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewTokenBucketLimiter(0.001, 1, 0)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(userIDKey, "alice"); c.Next() }, RateLimit(l))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "COMMON_015")
	assert.Equal(t, 1, l.BucketCount())
}

//Personal.AI order the ending
