// internal/application/currency/service.go
//
// Application service for the exchange-rate table: operator imports replace
// the whole table atomically, and readers get snapshots through a Redis-backed
// TableSource that falls back to the database when the cache misbehaves.
//
// Dependencies:
//   Depends on: domain/currency, application/events, pkg/errors,
//               monitoring/logging, golang.org/x/text/currency
//   Depended by: application/renewal (as TableSource), interfaces/http,
//                interfaces/cli

package currency

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turtacn/KeyIP-Renewals/internal/application/events"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
	isocurrency "golang.org/x/text/currency"
)

// Cache is the read-through cache the snapshot source uses.  The Redis cache
// in infrastructure/database/redis satisfies it.
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	Delete(ctx context.Context, keys ...string) error
}

// Metrics is the subset of AppMetrics recorded here.
type Metrics interface {
	CacheAccess(cache string, hit bool)
	CurrencyTableLoaded(size int)
}

type noopMetrics struct{}

func (noopMetrics) CacheAccess(string, bool) {}
func (noopMetrics) CurrencyTableLoaded(int)  {}

const cacheName = "currency"

// RateInput is one row of an import.
type RateInput struct {
	Code   string          `json:"code"`
	ToBase decimal.Decimal `json:"to_base"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Cached snapshot source
// ─────────────────────────────────────────────────────────────────────────────

// CachedSource is a domainCurrency.TableSource that reads the rows through
// Cache.  Cache failures degrade to a direct repository read.
type CachedSource struct {
	repo    domainCurrency.Repository
	cache   Cache
	key     string
	ttl     time.Duration
	metrics Metrics
	logger  logging.Logger
}

// NewCachedSource returns a source over repo.  A nil cache reads the
// repository every time.
func NewCachedSource(repo domainCurrency.Repository, cache Cache, key string, ttl time.Duration, metrics Metrics, logger logging.Logger) *CachedSource {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedSource{repo: repo, cache: cache, key: key, ttl: ttl, metrics: metrics, logger: logger}
}

// Load returns a fresh Table built from cached or stored rows.
func (s *CachedSource) Load(ctx context.Context) (*domainCurrency.Table, error) {
	if s.cache == nil {
		return domainCurrency.NewRepositorySource(s.repo).Load(ctx)
	}

	var (
		rows    []domainCurrency.Currency
		hit     = true
		loadErr error
	)
	err := s.cache.GetOrSet(ctx, s.key, &rows, s.ttl, func(ctx context.Context) (interface{}, error) {
		hit = false
		fresh, err := s.repo.ListAll(ctx)
		if err != nil {
			loadErr = err
			return nil, err
		}
		if fresh == nil {
			fresh = []domainCurrency.Currency{}
		}
		return fresh, nil
	})
	s.metrics.CacheAccess(cacheName, hit)

	switch {
	case loadErr != nil:
		return nil, errors.Wrap(loadErr, errors.CodeUnknown, "failed to load currency table")
	case err != nil:
		s.logger.Warn("currency cache unavailable, reading database", logging.Err(err))
		return domainCurrency.NewRepositorySource(s.repo).Load(ctx)
	}

	table, err := domainCurrency.NewTable(rows)
	if err != nil {
		return nil, err
	}
	s.metrics.CurrencyTableLoaded(table.Len())
	return table, nil
}

// Invalidate drops the cached rows.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, s.key)
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service imports and lists exchange rates.
type Service struct {
	repo      domainCurrency.Repository
	source    *CachedSource
	publisher events.Publisher
	metrics   Metrics
	logger    logging.Logger
	base      string
	strict    bool
	clock     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithBaseCurrency sets the code events are tagged with and, under
// WithStrictBase, the code whose rate must be exactly one.
func WithBaseCurrency(code string) Option {
	return func(s *Service) { s.base = strings.ToUpper(strings.TrimSpace(code)) }
}

// WithStrictBase rejects imports that quote the base currency at anything
// but one.  Off by default: rates are plain multipliers and tables may carry
// the base at any value.
func WithStrictBase(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService wires a Service.  source may be nil, in which case reads go
// straight to repo.
func NewService(repo domainCurrency.Repository, source *CachedSource, logger logging.Logger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.InvalidParam("currency service requires a repository")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if source == nil {
		source = NewCachedSource(repo, nil, "", 0, nil, logger)
	}
	s := &Service{
		repo:      repo,
		source:    source,
		publisher: events.Nop,
		metrics:   noopMetrics{},
		logger:    logger.Named("currency-service"),
		base:      domainCurrency.DefaultCode,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Source is the TableSource other services price against.
func (s *Service) Source() domainCurrency.TableSource {
	return s.source
}

// List returns the current snapshot.
func (s *Service) List(ctx context.Context) (*domainCurrency.Table, error) {
	return s.source.Load(ctx)
}

// ImportRates validates rows and replaces the whole table with them.  Codes
// must be ISO 4217.  Under WithStrictBase the base currency, when present,
// must be quoted at one.
func (s *Service) ImportRates(ctx context.Context, inputs []RateInput) (*domainCurrency.Table, error) {
	if len(inputs) == 0 {
		return nil, errors.InvalidParam("rate import is empty")
	}

	now := s.clock().UTC()
	rows := make([]domainCurrency.Currency, 0, len(inputs))
	for _, in := range inputs {
		code := strings.ToUpper(strings.TrimSpace(in.Code))
		unit, err := isocurrency.ParseISO(code)
		if err != nil {
			return nil, errors.New(errors.ErrCodeCurrencyCodeInvalid, "invalid currency code").WithDetail(in.Code)
		}
		code = unit.String()
		if s.strict && code == s.base && !in.ToBase.Equal(decimal.NewFromInt(1)) {
			return nil, errors.New(errors.ErrCodeCurrencyRateInvalid, "base currency must be quoted at 1").
				WithDetail(code + "=" + in.ToBase.String())
		}
		rows = append(rows, domainCurrency.Currency{Name: code, ToBase: in.ToBase, UpdatedAt: now})
	}

	table, err := domainCurrency.NewTable(rows)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAll(ctx, rows); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to replace currency table")
	}
	if err := s.source.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate currency cache", logging.Err(err))
	}
	s.metrics.CurrencyTableLoaded(table.Len())

	codes := table.Codes()
	evt := events.New(events.CurrencyRatesUpdated, s.base, events.CurrencyRatesUpdatedPayload{Codes: codes, ImportedAt: now})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish event", logging.String("type", string(evt.Type)), logging.Err(err))
	}
	s.logger.Info("currency table replaced", logging.Int("count", len(codes)))
	return table, nil
}

//Personal.AI order the ending
