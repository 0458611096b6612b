// internal/application/renewal/service.go
//
// Application service for the renewal workflow.  Orchestrates provider payload
// ingestion, instruction batches with the portfolio access gate, surcharge
// lookup, pay totals and price refreshes after a rate import.
//
// Every call that prices something loads one currency snapshot through
// currency.TableSource and passes it down; nothing holds a table between
// calls.
//
// Dependencies:
//   Depends on: domain/renewal, domain/portfolio, domain/currency,
//               application/events, pkg/errors, monitoring/logging
//   Depended by: interfaces/http/handlers, interfaces/cli, cmd/worker

package renewal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turtacn/KeyIP-Renewals/internal/application/events"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	domainPortfolio "github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Metrics is the subset of AppMetrics the service records into.
type Metrics interface {
	RenewalsBuilt(source string, n int)
	UnknownCurrency(code string)
	InstructionUpdates(outcome string, n int)
	AccessDenied(reason string)
	PricesRefreshed(changed int, d time.Duration)
	CurrencyTableLoaded(size int)
}

type noopMetrics struct{}

func (noopMetrics) RenewalsBuilt(string, int)          {}
func (noopMetrics) UnknownCurrency(string)             {}
func (noopMetrics) InstructionUpdates(string, int)     {}
func (noopMetrics) AccessDenied(string)                {}
func (noopMetrics) PricesRefreshed(int, time.Duration) {}
func (noopMetrics) CurrencyTableLoaded(int)            {}

// Locker serialises price refreshes across processes.  TryLock returns
// ok=false when another holder owns name.
type Locker interface {
	TryLock(ctx context.Context, name string) (unlock func(context.Context) error, ok bool, err error)
}

const refreshLockName = "renewal-price-refresh"

// ErrRefreshInProgress is returned when another process holds the refresh lock.
var ErrRefreshInProgress = errors.New(errors.ErrCodeConflict, "price refresh already in progress")

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// IngestRequest carries one provider payload for one Matter.
type IngestRequest struct {
	UserID      string               `json:"-"`
	PortfolioID int64                `json:"portfolio_id"`
	Matter      domainRenewal.Matter `json:"matter"`
	Payload     []any                `json:"renewals"`
	Source      string               `json:"-"`
}

// PayTotal breaks a pay total into fees and surcharge.
type PayTotal struct {
	PortfolioID int64           `json:"portfolio_id"`
	Renewals    int             `json:"renewals"`
	Fees        decimal.Decimal `json:"fees"`
	Surcharge   decimal.Decimal `json:"surcharge"`
	Total       decimal.Decimal `json:"total"`
}

// RefreshResult summarises one RefreshPrices run.
type RefreshResult struct {
	Scanned    int           `json:"scanned"`
	Changed    int           `json:"changed"`
	Currencies int           `json:"currencies"`
	Duration   time.Duration `json:"duration"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the renewal workflow.
type Service struct {
	renewals     domainRenewal.Repository
	portfolios   domainPortfolio.Repository
	rates        domainCurrency.TableSource
	policy       domainPortfolio.AccessPolicy
	bhip         *domainPortfolio.BhipResolver
	instructions *domainRenewal.InstructionSet
	calcOpts     []domainCurrency.CalculatorOption
	publisher    events.Publisher
	metrics      Metrics
	locker       Locker
	logger       logging.Logger
	clock        func() time.Time
	maxBatch     int
	pageSize     int
}

// Option customises a Service.
type Option func(*Service)

// WithInstructionSet replaces the default {undecided, pay, abandon} set.
func WithInstructionSet(set *domainRenewal.InstructionSet) Option {
	return func(s *Service) {
		if set != nil {
			s.instructions = set
		}
	}
}

// WithAccessPolicy replaces membership-based access.
func WithAccessPolicy(p domainPortfolio.AccessPolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithBhipResolver replaces the default client -> portfolio resolver.
func WithBhipResolver(r *domainPortfolio.BhipResolver) Option {
	return func(s *Service) {
		if r != nil {
			s.bhip = r
		}
	}
}

// WithCalculatorOptions are applied to every Calculator the service builds.
func WithCalculatorOptions(opts ...domainCurrency.CalculatorOption) Option {
	return func(s *Service) { s.calcOpts = append(s.calcOpts, opts...) }
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

// WithLocker enables cross-process exclusion for RefreshPrices.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithClock overrides time.Now for ValidateFutureDate.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMaxBatchSize caps instruction batches.  Zero disables the cap.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) { s.maxBatch = n }
}

// WithRefreshPageSize sets how many prices RefreshPrices reads per query.
func WithRefreshPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewService wires the workflow.  renewals, portfolios and rates are required.
func NewService(renewals domainRenewal.Repository, portfolios domainPortfolio.Repository, rates domainCurrency.TableSource, logger logging.Logger, opts ...Option) (*Service, error) {
	if renewals == nil || portfolios == nil || rates == nil {
		return nil, errors.InvalidParam("renewal service requires renewal, portfolio and currency sources")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{
		renewals:     renewals,
		portfolios:   portfolios,
		rates:        rates,
		policy:       domainPortfolio.NewMembershipPolicy(portfolios),
		bhip:         domainPortfolio.NewBhipResolver(portfolios),
		instructions: domainRenewal.DefaultInstructionSet(),
		publisher:    events.Nop,
		metrics:      noopMetrics{},
		logger:       logger.Named("renewal-service"),
		clock:        time.Now,
		pageSize:     500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Instructions exposes the configured set.
func (s *Service) Instructions() *domainRenewal.InstructionSet {
	return s.instructions
}

func (s *Service) calculator(ctx context.Context) (*domainCurrency.Calculator, error) {
	table, err := s.rates.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.CurrencyTableLoaded(table.Len())
	return domainCurrency.NewCalculator(table, s.calcOpts...), nil
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish event",
			logging.String("type", string(evt.Type)),
			logging.String("key", evt.Key),
			logging.Err(err))
	}
}

func (s *Service) checkPortfolio(ctx context.Context, userID string, portfolioID int64) error {
	ok, err := s.policy.CanAccessPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "portfolio access check failed")
	}
	if !ok {
		s.metrics.AccessDenied(string(errors.ErrCodeNoPortfolioAccess))
		return errors.Forbidden("no access to portfolio").WithDetail(itoa(portfolioID))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Ingestion
// ---------------------------------------------------------------------------

// IngestMatterRenewals sanitizes a provider payload, builds renewals against
// a fresh currency snapshot and stores them in one transaction.  Garbage
// elements are dropped silently; a payload with nothing left stores nothing.
func (s *Service) IngestMatterRenewals(ctx context.Context, req IngestRequest) ([]*domainRenewal.Renewal, error) {
	if req.PortfolioID <= 0 {
		return nil, errors.New(errors.ErrCodeRenewalPayloadMalformed, "portfolio id is required")
	}
	if _, err := s.portfolios.FindByID(ctx, req.PortfolioID); err != nil {
		return nil, err
	}
	if err := s.checkPortfolio(ctx, req.UserID, req.PortfolioID); err != nil {
		return nil, err
	}

	calc, err := s.calculator(ctx)
	if err != nil {
		return nil, err
	}
	builder := domainRenewal.NewBuilder(calc, s.instructions,
		domainRenewal.WithUnknownCurrencyHook(s.metrics.UnknownCurrency))

	records := domainRenewal.RemoveGarbage(req.Payload)
	built := builder.BuildRenewals(make([]*domainRenewal.Renewal, 0, len(records)), records, req.Matter)
	if len(built) == 0 {
		s.logger.Info("payload contained no renewals",
			logging.Int64("portfolio_id", req.PortfolioID),
			logging.Int("raw", len(req.Payload)))
		return built, nil
	}
	for _, r := range built {
		r.PortfolioID = req.PortfolioID
	}

	err = s.renewals.WithTx(ctx, func(tx domainRenewal.Repository) error {
		return tx.CreateBatch(ctx, built)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to store renewals")
	}

	source := req.Source
	if source == "" {
		source = "api"
	}
	s.metrics.RenewalsBuilt(source, len(built))
	s.logger.Info("renewals ingested",
		logging.Int64("portfolio_id", req.PortfolioID),
		logging.String("ucid", req.Matter.UCID),
		logging.Int("count", len(built)),
		logging.Int("dropped", len(req.Payload)-len(records)))

	ids := make([]int64, len(built))
	for i, r := range built {
		ids[i] = r.ID
	}
	s.publish(ctx, events.New(events.RenewalsIngested, itoa(req.PortfolioID), events.RenewalsIngestedPayload{
		PortfolioID: req.PortfolioID,
		MatterUCID:  req.Matter.UCID,
		RenewalIDs:  ids,
		Source:      source,
	}))
	return built, nil
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// ValidateFutureDate fails with NoFutureDate unless date is after now.
func (s *Service) ValidateFutureDate(date time.Time) error {
	return domainRenewal.ValidateFutureDate(date, s.clock())
}

// VerifyPortfolioAccessForInstructions is the gate run before an instruction
// batch.  It fails with NoIDsFound when no record carries an id, with
// NoRenewalsFound when none of the ids resolve and with
// NoPortfolioAccessForRenewal on the first resolved renewal whose portfolio
// userID cannot access.
func (s *Service) VerifyPortfolioAccessForInstructions(ctx context.Context, userID string, updates []domainRenewal.InstructionUpdate) error {
	ids := domainRenewal.IDs(updates)
	if len(ids) == 0 {
		return domainRenewal.NoIDsFound()
	}
	found, err := s.renewals.FindByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "failed to load renewals")
	}
	if len(found) == 0 {
		return domainRenewal.NoRenewalsFound(ids)
	}

	decided := make(map[int64]bool, len(found))
	for _, r := range found {
		ok, seen := decided[r.PortfolioID]
		if !seen {
			ok, err = s.policy.CanAccessPortfolio(ctx, userID, r.PortfolioID)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeDatabaseError, "portfolio access check failed")
			}
			decided[r.PortfolioID] = ok
		}
		if !ok {
			s.metrics.AccessDenied(string(errors.ErrCodeNoPortfolioAccess))
			s.logger.Warn("instruction batch denied",
				logging.String("user_id", userID),
				logging.Int64("renewal_id", r.ID),
				logging.Int64("portfolio_id", r.PortfolioID))
			return domainRenewal.NoPortfolioAccess(r.ID, r.PortfolioID)
		}
	}
	return nil
}

// UpdateRenewalInstructions applies a batch all-or-nothing.  Every record is
// validated before any renewal is touched; the writes share one transaction.
// The result follows input order.  An empty batch returns an empty result.
func (s *Service) UpdateRenewalInstructions(ctx context.Context, updates []domainRenewal.InstructionUpdate) ([]*domainRenewal.Renewal, error) {
	if len(updates) == 0 {
		return []*domainRenewal.Renewal{}, nil
	}
	if s.maxBatch > 0 && len(updates) > s.maxBatch {
		s.metrics.InstructionUpdates("rejected", len(updates))
		return nil, errors.InvalidParam("instruction batch too large").WithDetail(itoa(int64(len(updates))))
	}
	if err := s.instructions.ValidateUpdates(updates); err != nil {
		s.metrics.InstructionUpdates("rejected", len(updates))
		return nil, err
	}

	ids := domainRenewal.IDs(updates)
	var out []*domainRenewal.Renewal
	err := s.renewals.WithTx(ctx, func(tx domainRenewal.Repository) error {
		found, err := tx.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]*domainRenewal.Renewal, len(found))
		for _, r := range found {
			byID[r.ID] = r
		}
		out = make([]*domainRenewal.Renewal, 0, len(updates))
		for _, u := range updates {
			r, ok := byID[*u.ID]
			if !ok {
				return domainRenewal.NoRenewalsFound([]int64{*u.ID})
			}
			u.Apply(r)
			if err := tx.UpdateInstruction(ctx, r); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		s.metrics.InstructionUpdates("rejected", len(updates))
		return nil, errors.Wrap(err, errors.CodeUnknown, "instruction batch rolled back")
	}
	s.metrics.InstructionUpdates("applied", len(out))
	return out, nil
}

// ApplyInstructions runs the access gate and then the batch, and announces
// the committed state.
func (s *Service) ApplyInstructions(ctx context.Context, userID string, updates []domainRenewal.InstructionUpdate) ([]*domainRenewal.Renewal, error) {
	if err := s.VerifyPortfolioAccessForInstructions(ctx, userID, updates); err != nil {
		return nil, err
	}
	updated, err := s.UpdateRenewalInstructions(ctx, updates)
	if err != nil {
		return nil, err
	}

	changes := make([]events.InstructionChange, len(updated))
	for i, r := range updated {
		changes[i] = events.InstructionChange{
			RenewalID:   r.ID,
			PortfolioID: r.PortfolioID,
			Instruction: string(r.CurrentInstruction),
			Confidence:  string(r.Confidence),
		}
	}
	s.publish(ctx, events.New(events.RenewalInstructionsUpdated, userID, events.InstructionsUpdatedPayload{
		UserID:  userID,
		Changes: changes,
	}))
	s.logger.Info("instructions applied", logging.String("user_id", userID), logging.Int("count", len(updated)))
	return updated, nil
}

// ---------------------------------------------------------------------------
// Pricing
// ---------------------------------------------------------------------------

// GetBhipPrice resolves the surcharge for one renewal and reports which tier
// supplied it.
func (s *Service) GetBhipPrice(ctx context.Context, renewalID int64) (*domainPortfolio.Resolution, error) {
	r, err := s.renewals.FindByID(ctx, renewalID)
	if err != nil {
		return nil, err
	}
	return s.bhip.ResolveDetail(ctx, r)
}

// GetRenewalBhipPrice is GetBhipPrice behind the portfolio access check.
func (s *Service) GetRenewalBhipPrice(ctx context.Context, userID string, renewalID int64) (*domainPortfolio.Resolution, error) {
	r, err := s.renewals.FindByID(ctx, renewalID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPortfolio(ctx, userID, r.PortfolioID); err != nil {
		return nil, err
	}
	return s.bhip.ResolveDetail(ctx, r)
}

// GetPayInstructionTotal sums the calculated fees of the pay renewals among
// renewals plus each one's surcharge.  Other instructions contribute zero.
func (s *Service) GetPayInstructionTotal(ctx context.Context, renewals []*domainRenewal.Renewal) (decimal.Decimal, error) {
	t, err := s.payTotal(ctx, renewals)
	if err != nil {
		return decimal.Zero, err
	}
	return t.Total, nil
}

// GetPortfolioPayTotal is the pay total over every renewal in a portfolio.
func (s *Service) GetPortfolioPayTotal(ctx context.Context, userID string, portfolioID int64) (*PayTotal, error) {
	if _, err := s.portfolios.FindByID(ctx, portfolioID); err != nil {
		return nil, err
	}
	if err := s.checkPortfolio(ctx, userID, portfolioID); err != nil {
		return nil, err
	}
	rs, err := s.renewals.ListByPortfolio(ctx, portfolioID, domainRenewal.WithInstruction(s.instructions.Pay()))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to list renewals")
	}
	t, err := s.payTotal(ctx, rs)
	if err != nil {
		return nil, err
	}
	t.PortfolioID = portfolioID
	return t, nil
}

func (s *Service) payTotal(ctx context.Context, renewals []*domainRenewal.Renewal) (*PayTotal, error) {
	t := &PayTotal{
		Fees:      s.instructions.PayTotal(renewals),
		Surcharge: decimal.Zero,
	}
	for _, r := range renewals {
		if r == nil || r.CurrentInstruction != s.instructions.Pay() {
			continue
		}
		amount, err := s.bhip.Resolve(ctx, r)
		if err != nil {
			return nil, err
		}
		t.Surcharge = t.Surcharge.Add(amount)
		t.Renewals++
	}
	t.Total = t.Fees.Add(t.Surcharge)
	return t, nil
}

// ListPortfolioRenewals lists a portfolio's renewals for userID.
func (s *Service) ListPortfolioRenewals(ctx context.Context, userID string, portfolioID int64, opts ...domainRenewal.QueryOption) ([]*domainRenewal.Renewal, error) {
	if err := s.checkPortfolio(ctx, userID, portfolioID); err != nil {
		return nil, err
	}
	return s.renewals.ListByPortfolio(ctx, portfolioID, opts...)
}

// RefreshPrices recomputes every stored price against a fresh snapshot and
// persists the ones that changed.  Runs are idempotent.
func (s *Service) RefreshPrices(ctx context.Context) (*RefreshResult, error) {
	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, refreshLockName)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRefreshInProgress
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release refresh lock", logging.Err(err))
			}
		}()
	}

	start := time.Now()
	calc, err := s.calculator(ctx)
	if err != nil {
		return nil, err
	}
	updater := domainRenewal.NewPriceUpdater(calc)
	res := &RefreshResult{Currencies: calc.Table().Len()}

	var after int64
	for {
		page, err := s.renewals.ListPrices(ctx, after, s.pageSize)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "failed to page renewal prices")
		}
		for _, p := range page {
			res.Scanned++
			after = p.ID
			if !updater.Update(p) {
				continue
			}
			if err := s.renewals.UpdateCalculatedPrices(ctx, p); err != nil {
				return nil, errors.Wrap(err, errors.CodeUnknown, "failed to store recalculated price").WithDetail(itoa(p.ID))
			}
			res.Changed++
		}
		if len(page) < s.pageSize {
			break
		}
	}

	res.Duration = time.Since(start)
	s.metrics.PricesRefreshed(res.Changed, res.Duration)
	s.logger.Info("prices refreshed",
		logging.Int("scanned", res.Scanned),
		logging.Int("changed", res.Changed),
		logging.Duration("duration", res.Duration))
	return res, nil
}

//Personal.AI order the ending
