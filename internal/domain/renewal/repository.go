package renewal

import (
	"context"
)

// Repository persists renewals and their prices.
type Repository interface {
	// FindByID returns the renewal with its price or a not-found AppError.
	FindByID(ctx context.Context, id int64) (*Renewal, error)
	// FindByIDs returns the renewals that exist among ids, with prices.
	// Unknown ids are skipped; order follows ids.
	FindByIDs(ctx context.Context, ids []int64) ([]*Renewal, error)
	ListByPortfolio(ctx context.Context, portfolioID int64, opts ...QueryOption) ([]*Renewal, error)
	// CreateBatch inserts renewals with their prices and assigns IDs.
	CreateBatch(ctx context.Context, renewals []*Renewal) error
	// UpdateInstruction persists CurrentInstruction and Confidence.
	UpdateInstruction(ctx context.Context, r *Renewal) error
	// ListPrices pages through all prices by ascending id.
	ListPrices(ctx context.Context, afterID int64, limit int) ([]*RenewalPrice, error)
	UpdateCalculatedPrices(ctx context.Context, p *RenewalPrice) error
	// WithTx runs fn against a transactional view; fn's error rolls back.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// QueryOptions holds list parameters.
type QueryOptions struct {
	Limit       int
	Offset      int
	Instruction *Instruction
}

// QueryOption is a functional option for QueryOptions.
type QueryOption func(*QueryOptions)

// WithPagination sets offset and limit.  Limit is clamped to [1, 1000].
func WithPagination(offset, limit int) QueryOption {
	return func(o *QueryOptions) {
		if offset < 0 {
			offset = 0
		}
		if limit < 1 {
			limit = 100
		}
		if limit > 1000 {
			limit = 1000
		}
		o.Offset = offset
		o.Limit = limit
	}
}

// WithInstruction restricts a list to renewals carrying ins.
func WithInstruction(ins Instruction) QueryOption {
	return func(o *QueryOptions) {
		o.Instruction = &ins
	}
}

// ApplyQueryOptions resolves opts over the defaults.  A zero Limit means no
// limit.
func ApplyQueryOptions(opts ...QueryOption) QueryOptions {
	o := QueryOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

//Personal.AI order the ending
