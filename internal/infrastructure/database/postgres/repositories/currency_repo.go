package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// PgxPool is the subset of *pgxpool.Pool the currency repository needs.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type postgresCurrencyRepo struct {
	pool PgxPool
	log  logging.Logger
}

// NewPostgresCurrencyRepo returns a currency.Repository over a pgx pool.
func NewPostgresCurrencyRepo(pool PgxPool, log logging.Logger) currency.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresCurrencyRepo{pool: pool, log: log}
}

// rates cross the wire as text so decimal precision survives.
type currencyRow struct {
	Name      string
	ToBase    string
	UpdatedAt time.Time
}

func (r *postgresCurrencyRepo) ListAll(ctx context.Context) ([]currency.Currency, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, to_base::text, updated_at FROM currencies ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list currencies")
	}
	raw, err := pgx.CollectRows(rows, pgx.RowToStructByPos[currencyRow])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan currencies")
	}

	out := make([]currency.Currency, 0, len(raw))
	for _, c := range raw {
		rate, err := decimal.NewFromString(c.ToBase)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCurrencyRateInvalid, "stored rate is not a decimal").WithDetail(c.Name)
		}
		out = append(out, currency.Currency{Name: c.Name, ToBase: rate, UpdatedAt: c.UpdatedAt})
	}
	return out, nil
}

// ReplaceAll deletes every row and re-inserts rows as one pipelined batch
// inside a single transaction.
func (r *postgresCurrencyRepo) ReplaceAll(ctx context.Context, rows []currency.Currency) error {
	now := time.Now().UTC()
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM currencies`); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, c := range rows {
			at := c.UpdatedAt
			if at.IsZero() {
				at = now
			}
			batch.Queue(`INSERT INTO currencies (name, to_base, updated_at) VALUES ($1, $2::text::numeric, $3)`,
				c.Name, c.ToBase.String(), at)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		r.log.Error("currency table replace failed", logging.Int("rows", len(rows)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to replace currency table")
	}
	r.log.Debug("currency table replaced", logging.Int("rows", len(rows)))
	return nil
}

//Personal.AI order the ending
