package renewal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/KeyIP-Renewals/internal/application/events"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	domainPortfolio "github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
)

// ─────────────────────────────────────────────────────────────────────────────
// Renewal repository
// ─────────────────────────────────────────────────────────────────────────────

type mockRenewalRepo struct {
	mock.Mock
}

func (m *mockRenewalRepo) FindByID(ctx context.Context, id int64) (*domainRenewal.Renewal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainRenewal.Renewal), args.Error(1)
}

func (m *mockRenewalRepo) FindByIDs(ctx context.Context, ids []int64) ([]*domainRenewal.Renewal, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainRenewal.Renewal), args.Error(1)
}

func (m *mockRenewalRepo) ListByPortfolio(ctx context.Context, portfolioID int64, opts ...domainRenewal.QueryOption) ([]*domainRenewal.Renewal, error) {
	args := m.Called(ctx, portfolioID, domainRenewal.ApplyQueryOptions(opts...))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainRenewal.Renewal), args.Error(1)
}

func (m *mockRenewalRepo) CreateBatch(ctx context.Context, renewals []*domainRenewal.Renewal) error {
	return m.Called(ctx, renewals).Error(0)
}

func (m *mockRenewalRepo) UpdateInstruction(ctx context.Context, r *domainRenewal.Renewal) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRenewalRepo) ListPrices(ctx context.Context, afterID int64, limit int) ([]*domainRenewal.RenewalPrice, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainRenewal.RenewalPrice), args.Error(1)
}

func (m *mockRenewalRepo) UpdateCalculatedPrices(ctx context.Context, p *domainRenewal.RenewalPrice) error {
	return m.Called(ctx, p).Error(0)
}

// WithTx hands the mock itself to fn so expectations cover both sides.
func (m *mockRenewalRepo) WithTx(ctx context.Context, fn func(domainRenewal.Repository) error) error {
	m.Called(ctx)
	return fn(m)
}

// ─────────────────────────────────────────────────────────────────────────────
// Portfolio repository
// ─────────────────────────────────────────────────────────────────────────────

type mockPortfolioRepo struct {
	mock.Mock
}

func (m *mockPortfolioRepo) FindByID(ctx context.Context, id int64) (*domainPortfolio.Portfolio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPortfolio.Portfolio), args.Error(1)
}

func (m *mockPortfolioRepo) FindClient(ctx context.Context, id int64) (*domainPortfolio.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPortfolio.Client), args.Error(1)
}

func (m *mockPortfolioRepo) FindBhipPrice(ctx context.Context, costType domainPortfolio.CostType, costID int64) (*domainPortfolio.BhipPrice, error) {
	args := m.Called(ctx, costType, costID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPortfolio.BhipPrice), args.Error(1)
}

func (m *mockPortfolioRepo) HasMember(ctx context.Context, userID string, portfolioID int64) (bool, error) {
	args := m.Called(ctx, userID, portfolioID)
	return args.Bool(0), args.Error(1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Small fakes
// ─────────────────────────────────────────────────────────────────────────────

type staticSource struct {
	table *domainCurrency.Table
	err   error
}

func (s staticSource) Load(context.Context) (*domainCurrency.Table, error) {
	return s.table, s.err
}

func tableOf(t *testing.T, rows ...domainCurrency.Currency) staticSource {
	t.Helper()
	tbl, err := domainCurrency.NewTable(rows)
	require.NoError(t, err)
	return staticSource{table: tbl}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return p.err
}

type recordingMetrics struct {
	noopMetrics
	built    map[string]int
	unknown  []string
	outcomes map[string]int
	denied   []string
	changed  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{built: map[string]int{}, outcomes: map[string]int{}}
}

func (m *recordingMetrics) RenewalsBuilt(source string, n int) { m.built[source] += n }
func (m *recordingMetrics) UnknownCurrency(code string)        { m.unknown = append(m.unknown, code) }
func (m *recordingMetrics) InstructionUpdates(o string, n int) { m.outcomes[o] += n }
func (m *recordingMetrics) AccessDenied(reason string)         { m.denied = append(m.denied, reason) }
func (m *recordingMetrics) PricesRefreshed(changed int, _ time.Duration) {
	m.changed += changed
}

type fakeLocker struct {
	held     bool
	released bool
}

func (l *fakeLocker) TryLock(context.Context, string) (func(context.Context) error, bool, error) {
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func(context.Context) error {
		l.held = false
		l.released = true
		return nil
	}, true, nil
}

//Personal.AI order the ending
