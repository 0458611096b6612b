// Package prometheus exposes the service's metrics through a private
// prometheus.Registry.  Application code records through AppMetrics; only
// this package imports client_golang.
package prometheus

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
)

// MetricsCollector registers metric vectors and serves them.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
	Gatherer() prometheus.Gatherer
}

// CounterVec wraps prometheus.CounterVec.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Counter wraps prometheus.Counter.
type Counter interface {
	Inc()
	Add(delta float64)
}

// GaugeVec wraps prometheus.GaugeVec.
type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

// Gauge wraps prometheus.Gauge.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

// HistogramVec wraps prometheus.HistogramVec.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// Histogram wraps prometheus.Observer.
type Histogram interface {
	Observe(value float64)
}

// CollectorConfig holds collector settings.
type CollectorConfig struct {
	Namespace               string
	Subsystem               string
	EnableProcessMetrics    bool
	EnableGoMetrics         bool
	DefaultHistogramBuckets []float64
	ConstLabels             map[string]string
}

type prometheusCollector struct {
	registry   *prometheus.Registry
	config     CollectorConfig
	registered map[string]prometheus.Collector
	mu         sync.Mutex
	logger     logging.Logger
}

// NewMetricsCollector creates a collector over a fresh registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("prometheus: namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	registry := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}))
	}
	if cfg.EnableGoMetrics {
		registry.MustRegister(collectors.NewGoCollector())
	}
	if cfg.DefaultHistogramBuckets == nil {
		cfg.DefaultHistogramBuckets = prometheus.DefBuckets
	}

	return &prometheusCollector{
		registry:   registry,
		config:     cfg,
		registered: make(map[string]prometheus.Collector),
		logger:     logger,
	}, nil
}

func (c *prometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (c *prometheusCollector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// register returns the already-registered collector for name when present so
// repeated registration is idempotent.
func (c *prometheusCollector) register(name string, col prometheus.Collector) (prometheus.Collector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fq := prometheus.BuildFQName(c.config.Namespace, c.config.Subsystem, name)
	if existing, ok := c.registered[fq]; ok {
		return existing, nil
	}
	if err := c.registry.Register(col); err != nil {
		return nil, err
	}
	c.registered[fq] = col
	return col, nil
}

func (c *prometheusCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.config.ConstLabels,
	}, labels)

	got, err := c.register(name, vec)
	if err != nil {
		c.logger.Error("failed to register counter", logging.String("name", name), logging.Err(err))
		return noopCounterVec{}
	}
	if v, ok := got.(*prometheus.CounterVec); ok {
		return promCounterVec{vec: v}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "counter"))
	return noopCounterVec{}
}

func (c *prometheusCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.config.ConstLabels,
	}, labels)

	got, err := c.register(name, vec)
	if err != nil {
		c.logger.Error("failed to register gauge", logging.String("name", name), logging.Err(err))
		return noopGaugeVec{}
	}
	if v, ok := got.(*prometheus.GaugeVec); ok {
		return promGaugeVec{vec: v}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "gauge"))
	return noopGaugeVec{}
}

func (c *prometheusCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = c.config.DefaultHistogramBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.config.ConstLabels,
		Buckets:     buckets,
	}, labels)

	got, err := c.register(name, vec)
	if err != nil {
		c.logger.Error("failed to register histogram", logging.String("name", name), logging.Err(err))
		return noopHistogramVec{}
	}
	if v, ok := got.(*prometheus.HistogramVec); ok {
		return promHistogramVec{vec: v}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "histogram"))
	return noopHistogramVec{}
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrappers
// ─────────────────────────────────────────────────────────────────────────────

type promCounterVec struct{ vec *prometheus.CounterVec }

func (v promCounterVec) WithLabelValues(lvs ...string) Counter { return v.vec.WithLabelValues(lvs...) }

type promGaugeVec struct{ vec *prometheus.GaugeVec }

func (v promGaugeVec) WithLabelValues(lvs ...string) Gauge { return v.vec.WithLabelValues(lvs...) }

type promHistogramVec struct{ vec *prometheus.HistogramVec }

func (v promHistogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.vec.WithLabelValues(lvs...)
}

type noopCounterVec struct{}

func (noopCounterVec) WithLabelValues(...string) Counter { return noopMetric{} }

type noopGaugeVec struct{}

func (noopGaugeVec) WithLabelValues(...string) Gauge { return noopMetric{} }

type noopHistogramVec struct{}

func (noopHistogramVec) WithLabelValues(...string) Histogram { return noopMetric{} }

type noopMetric struct{}

func (noopMetric) Inc()            {}
func (noopMetric) Dec()            {}
func (noopMetric) Add(float64)     {}
func (noopMetric) Set(float64)     {}
func (noopMetric) Observe(float64) {}

// ─────────────────────────────────────────────────────────────────────────────
// Timer
// ─────────────────────────────────────────────────────────────────────────────

// Timer observes elapsed seconds into a Histogram.
type Timer struct {
	histogram Histogram
	start     time.Time
}

// NewTimer starts a Timer.
func NewTimer(h Histogram) *Timer {
	return &Timer{histogram: h, start: time.Now()}
}

// ObserveDuration records the elapsed time and returns it.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.Observe(d.Seconds())
	}
	return d
}

//Personal.AI order the ending
