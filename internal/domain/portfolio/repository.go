package portfolio

import (
	"context"
)

// Repository reads portfolios, clients and surcharge records.  BHIP records
// are created administratively; the service only reads them.
type Repository interface {
	// FindByID returns a PortfolioNotFound AppError when id is unknown.
	FindByID(ctx context.Context, id int64) (*Portfolio, error)
	// FindClient returns a ClientNotFound AppError when id is unknown.
	FindClient(ctx context.Context, id int64) (*Client, error)
	// FindBhipPrice returns (nil, nil) when no record matches.
	FindBhipPrice(ctx context.Context, costType CostType, costID int64) (*BhipPrice, error)
	// HasMember reports whether userID may act on portfolioID.
	HasMember(ctx context.Context, userID string, portfolioID int64) (bool, error)
}

//Personal.AI order the ending
