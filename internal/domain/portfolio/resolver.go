package portfolio

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// Tier names reported in a Resolution.
const (
	TierClient    = "client"
	TierPortfolio = "portfolio"
	TierNone      = "none"
)

// BhipStrategy is one tier of the surcharge lookup.  Lookup returns nil when
// the tier has no record for p.
type BhipStrategy interface {
	Tier() string
	Lookup(ctx context.Context, p *Portfolio) (*BhipPrice, error)
}

// ClientOverride finds a Client-scoped record for the portfolio's client.
type ClientOverride struct{ Repo Repository }

func (ClientOverride) Tier() string { return TierClient }

func (s ClientOverride) Lookup(ctx context.Context, p *Portfolio) (*BhipPrice, error) {
	if p.ClientID == 0 {
		return nil, nil
	}
	return s.Repo.FindBhipPrice(ctx, CostTypeClient, p.ClientID)
}

// PortfolioOverride finds a Portfolio-scoped record.
type PortfolioOverride struct{ Repo Repository }

func (PortfolioOverride) Tier() string { return TierPortfolio }

func (s PortfolioOverride) Lookup(ctx context.Context, p *Portfolio) (*BhipPrice, error) {
	return s.Repo.FindBhipPrice(ctx, CostTypePortfolio, p.ID)
}

// Resolution is the outcome of a surcharge lookup.
type Resolution struct {
	Tier   string          `json:"tier"`
	Record *BhipPrice      `json:"record,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// BhipResolver evaluates strategies in order and stops at the first hit.
// Without a hit the surcharge is zero.
type BhipResolver struct {
	repo       Repository
	strategies []BhipStrategy
	domestic   string
}

// ResolverOption customises a BhipResolver.
type ResolverOption func(*BhipResolver)

// WithDomesticCountry sets the country that selects us_price.
func WithDomesticCountry(code string) ResolverOption {
	return func(r *BhipResolver) {
		if code != "" {
			r.domestic = code
		}
	}
}

// WithStrategies replaces the default client -> portfolio order.
func WithStrategies(s ...BhipStrategy) ResolverOption {
	return func(r *BhipResolver) { r.strategies = s }
}

// NewBhipResolver returns a resolver with the client -> portfolio -> zero
// order.
func NewBhipResolver(repo Repository, opts ...ResolverOption) *BhipResolver {
	r := &BhipResolver{
		repo:       repo,
		strategies: []BhipStrategy{ClientOverride{Repo: repo}, PortfolioOverride{Repo: repo}},
		domestic:   "US",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the surcharge amount for rn.
func (r *BhipResolver) Resolve(ctx context.Context, rn *renewal.Renewal) (decimal.Decimal, error) {
	res, err := r.ResolveDetail(ctx, rn)
	if err != nil {
		return decimal.Zero, err
	}
	return res.Amount, nil
}

// ResolveDetail is Resolve that also reports which tier matched.
func (r *BhipResolver) ResolveDetail(ctx context.Context, rn *renewal.Renewal) (*Resolution, error) {
	if rn == nil {
		return nil, errors.InvalidParam("renewal is required")
	}
	p, err := r.repo.FindByID(ctx, rn.PortfolioID)
	if err != nil {
		return nil, err
	}
	for _, s := range r.strategies {
		rec, err := s.Lookup(ctx, p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "bhip lookup failed").WithDetail(s.Tier())
		}
		if rec != nil {
			return &Resolution{Tier: s.Tier(), Record: rec, Amount: rec.PriceFor(rn.IsDomestic(r.domestic))}, nil
		}
	}
	return &Resolution{Tier: TierNone, Amount: decimal.Zero}, nil
}

//Personal.AI order the ending
