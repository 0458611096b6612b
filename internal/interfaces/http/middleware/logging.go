// internal/interfaces/http/middleware/logging.go
//
// Request id, access log, HTTP metrics and panic recovery.

package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

const (
	// HeaderRequestID carries the request id in and out.
	HeaderRequestID = "X-Request-ID"

	requestIDKey = "renewals.request_id"
)

// HTTPMetrics records one finished request.  AppMetrics satisfies it.
type HTTPMetrics interface {
	RecordHTTPRequest(method, path string, code int, d time.Duration)
}

// LoggingConfig tunes RequestLogging.
type LoggingConfig struct {
	// SkipPaths are not logged.  They are still measured.
	SkipPaths []string
	// SlowThreshold promotes slow requests to warn.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig skips the probes and flags requests over three seconds.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// RequestID reuses an inbound X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogging writes one access-log line per request and feeds metrics.
// metrics may be nil.
func RequestLogging(logger logging.Logger, metrics HTTPMetrics, cfg LoggingConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if metrics != nil {
			metrics.RecordHTTPRequest(c.Request.Method, route, status, elapsed)
		}
		if skip[c.Request.URL.Path] {
			return
		}

		fields := []logging.Field{
			logging.String("request_id", RequestIDFrom(c)),
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.String("route", route),
			logging.Int("status", status),
			logging.Duration("latency", elapsed),
			logging.String("client_ip", c.ClientIP()),
		}
		if id := UserID(c); id != "" {
			fields = append(fields, logging.String("user_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		case cfg.SlowThreshold > 0 && elapsed > cfg.SlowThreshold:
			logger.Warn("slow http request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 and logs the stack.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in http handler",
					logging.String("request_id", RequestIDFrom(c)),
					logging.String("path", c.Request.URL.Path),
					logging.Any("panic", rec),
					logging.String("stack", string(debug.Stack())))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    errors.ErrCodeInternal,
					"message": errors.DefaultMessageForCode(errors.ErrCodeInternal),
				})
			}
		}()
		c.Next()
	}
}

//Personal.AI order the ending
