package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthChecker is a dependency the readiness probe pings.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a ping function to HealthChecker.
type CheckerFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

func (c CheckerFunc) Name() string                    { return c.ComponentName }
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
	}
}

// RegisterRoutes mounts the probes at the root of r.
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

// LivenessResponse is the body of GET /healthz.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the body of GET /readyz.
type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

// ComponentCheck is one dependency's probe result.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness always answers 200 while the process runs.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness answers 503 when any dependency fails its check.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	for _, cc := range components {
		if cc.Status != statusHealthy {
			c.JSON(http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Components: components})
			return
		}
	}
	c.JSON(http.StatusOK, ReadinessResponse{Status: "ready", Components: components})
}

func (h *HealthHandler) checkAll(ctx context.Context) map[string]ComponentCheck {
	results := make(map[string]ComponentCheck, len(h.checkers))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, checker := range h.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := hc.Check(ctx)
			cc := ComponentCheck{
				Status:  statusHealthy,
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cc.Status = statusUnhealthy
				cc.Error = err.Error()
			}
			mu.Lock()
			results[hc.Name()] = cc
			mu.Unlock()
		}(checker)
	}
	wg.Wait()
	return results
}

//Personal.AI order the ending
