package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every series the service records.  All methods are safe on
// a nil receiver so components can run without metrics.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Renewal engine
	RenewalsBuiltTotal       CounterVec
	UnknownCurrencyTotal     CounterVec
	InstructionUpdatesTotal  CounterVec
	AccessDeniedTotal        CounterVec
	PriceRefreshChangedTotal CounterVec
	PriceRefreshDuration     HistogramVec
	CurrencyTableSize        GaugeVec

	// Infrastructure
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessagesConsumedTotal  CounterVec
	MessagesPublishedTotal CounterVec
	MessageProcessDuration HistogramVec
	DBPoolOpen             GaugeVec
	DBPoolInUse            GaugeVec
}

var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultRefreshDurationBuckets = []float64{.1, .5, 1, 5, 15, 60, 300}
)

// NewAppMetrics registers every series on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),

		RenewalsBuiltTotal:       collector.RegisterCounter("renewals_built_total", "Renewals built from provider payloads", "source"),
		UnknownCurrencyTotal:     collector.RegisterCounter("unknown_currency_total", "Non-zero fees converted without a known rate", "currency"),
		InstructionUpdatesTotal:  collector.RegisterCounter("instruction_updates_total", "Renewals touched by instruction batches", "outcome"),
		AccessDeniedTotal:        collector.RegisterCounter("portfolio_access_denied_total", "Instruction batches rejected by portfolio access", "reason"),
		PriceRefreshChangedTotal: collector.RegisterCounter("price_refresh_changed_total", "Renewal prices rewritten by a refresh"),
		PriceRefreshDuration:     collector.RegisterHistogram("price_refresh_duration_seconds", "Price refresh duration", DefaultRefreshDurationBuckets),
		CurrencyTableSize:        collector.RegisterGauge("currency_table_size", "Currencies in the last loaded rate table"),

		CacheHitsTotal:         collector.RegisterCounter("cache_hits_total", "Cache hits", "cache"),
		CacheMissesTotal:       collector.RegisterCounter("cache_misses_total", "Cache misses", "cache"),
		MessagesConsumedTotal:  collector.RegisterCounter("messages_consumed_total", "Kafka messages consumed", "topic", "status"),
		MessagesPublishedTotal: collector.RegisterCounter("messages_published_total", "Kafka messages published", "topic", "status"),
		MessageProcessDuration: collector.RegisterHistogram("message_process_duration_seconds", "Kafka message handling duration", DefaultHTTPDurationBuckets, "topic"),
		DBPoolOpen:             collector.RegisterGauge("db_pool_open", "Open database connections"),
		DBPoolInUse:            collector.RegisterGauge("db_pool_in_use", "In-use database connections"),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RenewalsBuilt counts n renewals built for source ("http", "cli", ...).
func (m *AppMetrics) RenewalsBuilt(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RenewalsBuiltTotal.WithLabelValues(source).Add(float64(n))
}

// UnknownCurrency counts a non-zero fee quoted in a currency without a rate.
func (m *AppMetrics) UnknownCurrency(code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "empty"
	}
	m.UnknownCurrencyTotal.WithLabelValues(code).Inc()
}

// InstructionUpdates counts n renewals with outcome "applied" or "rejected".
func (m *AppMetrics) InstructionUpdates(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.InstructionUpdatesTotal.WithLabelValues(outcome).Add(float64(n))
}

// AccessDenied counts a rejected access gate by reason (error code).
func (m *AppMetrics) AccessDenied(reason string) {
	if m == nil {
		return
	}
	m.AccessDeniedTotal.WithLabelValues(reason).Inc()
}

// PricesRefreshed records one refresh run.
func (m *AppMetrics) PricesRefreshed(changed int, d time.Duration) {
	if m == nil {
		return
	}
	m.PriceRefreshChangedTotal.WithLabelValues().Add(float64(changed))
	m.PriceRefreshDuration.WithLabelValues().Observe(d.Seconds())
}

// CurrencyTableLoaded records the size of the latest table.
func (m *AppMetrics) CurrencyTableLoaded(size int) {
	if m == nil {
		return
	}
	m.CurrencyTableSize.WithLabelValues().Set(float64(size))
}

// CacheAccess records a hit or miss for cache.
func (m *AppMetrics) CacheAccess(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// MessageConsumed records one handled Kafka message.
func (m *AppMetrics) MessageConsumed(topic string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.MessagesConsumedTotal.WithLabelValues(topic, status(err)).Inc()
	m.MessageProcessDuration.WithLabelValues(topic).Observe(d.Seconds())
}

// MessagePublished records one publish attempt.
func (m *AppMetrics) MessagePublished(topic string, err error) {
	if m == nil {
		return
	}
	m.MessagesPublishedTotal.WithLabelValues(topic, status(err)).Inc()
}

// DBPool records connection pool occupancy.
func (m *AppMetrics) DBPool(open, inUse int) {
	if m == nil {
		return
	}
	m.DBPoolOpen.WithLabelValues().Set(float64(open))
	m.DBPoolInUse.WithLabelValues().Set(float64(inUse))
}

//Personal.AI order the ending
