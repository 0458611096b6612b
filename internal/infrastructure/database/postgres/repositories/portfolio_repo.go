package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

type postgresPortfolioRepo struct {
	baseRepo
}

// NewPostgresPortfolioRepo returns a portfolio.Repository over conn.
func NewPostgresPortfolioRepo(conn *postgres.Connection, log logging.Logger) portfolio.Repository {
	return &postgresPortfolioRepo{baseRepo: newBaseRepo(conn, log)}
}

func (r *postgresPortfolioRepo) FindByID(ctx context.Context, id int64) (*portfolio.Portfolio, error) {
	var (
		p        portfolio.Portfolio
		clientID sql.NullInt64
	)
	err := r.executor().QueryRowContext(ctx, `
		SELECT id, client_id, name, created_at, updated_at
		FROM portfolios
		WHERE id = $1`, id,
	).Scan(&p.ID, &clientID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodePortfolioNotFound, "portfolio not found").WithDetail(fmt.Sprintf("id=%d", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load portfolio")
	}
	p.ClientID = clientID.Int64
	return &p, nil
}

func (r *postgresPortfolioRepo) FindClient(ctx context.Context, id int64) (*portfolio.Client, error) {
	var c portfolio.Client
	err := r.executor().QueryRowContext(ctx,
		`SELECT id, name, created_at FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeClientNotFound, "client not found").WithDetail(fmt.Sprintf("id=%d", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load client")
	}
	return &c, nil
}

func (r *postgresPortfolioRepo) FindBhipPrice(ctx context.Context, costType portfolio.CostType, costID int64) (*portfolio.BhipPrice, error) {
	var (
		b  portfolio.BhipPrice
		ct string
	)
	err := r.executor().QueryRowContext(ctx, `
		SELECT id, cost_type, cost_id, us_price, fn_price
		FROM bhip_prices
		WHERE cost_type = $1 AND cost_id = $2`, string(costType), costID,
	).Scan(&b.ID, &ct, &b.CostID, &b.USPrice, &b.FNPrice)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load bhip price")
	}
	b.CostType = portfolio.CostType(ct)
	return &b, nil
}

func (r *postgresPortfolioRepo) HasMember(ctx context.Context, userID string, portfolioID int64) (bool, error) {
	var ok bool
	err := r.executor().QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM portfolio_users WHERE portfolio_id = $1 AND user_id = $2
		)`, portfolioID, userID,
	).Scan(&ok)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to check portfolio membership")
	}
	return ok, nil
}

//Personal.AI order the ending
