// Package repositories implements the domain repositories on PostgreSQL.
// Renewals and portfolios run on database/sql with lib/pq; the currency table
// runs on pgx for its bulk replace.
package repositories

import (
	"context"
	"database/sql"

	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// queryExecutor abstracts sql.DB and sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

type baseRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

func newBaseRepo(conn *postgres.Connection, log logging.Logger) baseRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return baseRepo{conn: conn, log: log}
}

func (r *baseRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

// inTx runs fn inside r's transaction, or a new one when r has none.  A new
// transaction rolls back on error or panic.
func (r *baseRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	if r.tx != nil {
		return fn(r.tx)
	}
	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Error("rollback failed", logging.Err(rbErr))
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

//Personal.AI order the ending
