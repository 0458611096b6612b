// Package http assembles the gin engine and the HTTP server of the renewal
// API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/middleware"
)

// RouterConfig carries everything NewRouter mounts.  Nil handlers and
// middleware are skipped.
type RouterConfig struct {
	Mode string

	RenewalHandler   *handlers.RenewalHandler
	PortfolioHandler *handlers.PortfolioHandler
	CurrencyHandler  *handlers.CurrencyHandler
	HealthHandler    *handlers.HealthHandler

	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    middleware.RateLimiter
	HTTPMetrics    middleware.HTTPMetrics
	MaxBodySize    int64

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler

	Logger logging.Logger
}

// NewRouter builds the engine: probes and /metrics at the root, the API under
// /api/v1 behind authentication.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogging(logger, cfg.HTTPMetrics, middleware.DefaultLoggingConfig()),
		middleware.Recovery(logger),
	)
	if cfg.MaxBodySize > 0 {
		r.Use(limitBody(cfg.MaxBodySize))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Authenticate())
	}
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	if cfg.RenewalHandler != nil {
		cfg.RenewalHandler.RegisterRoutes(api)
	}
	if cfg.PortfolioHandler != nil {
		cfg.PortfolioHandler.RegisterRoutes(api)
	}
	if cfg.CurrencyHandler != nil {
		cfg.CurrencyHandler.RegisterRoutes(api)
	}
	return r
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

//Personal.AI order the ending
