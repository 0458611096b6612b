package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

const renewalColumns = `r.id, r.portfolio_id, r.country, r.serial_no, r.ucid, r.description,
	r.renewal_sequence, r.due_date, r.grace_date, r.current_instruction, r.confidence,
	r.created_at, r.updated_at`

const priceColumns = `p.id, p.renewal_id,
	p.due_price, p.due_currency, p.grace_price, p.grace_currency,
	p.claim_price, p.claim_currency, p.agent_price, p.agent_currency,
	p.calculated_due_price, p.calculated_grace_price, p.calculated_claim_price, p.calculated_agent_price`

const selectRenewals = `SELECT ` + renewalColumns + `, ` + priceColumns + `
	FROM renewals r
	LEFT JOIN renewal_prices p ON p.renewal_id = r.id`

type postgresRenewalRepo struct {
	baseRepo
}

// NewPostgresRenewalRepo returns a renewal.Repository over conn.
func NewPostgresRenewalRepo(conn *postgres.Connection, log logging.Logger) renewal.Repository {
	return &postgresRenewalRepo{baseRepo: newBaseRepo(conn, log)}
}

func (r *postgresRenewalRepo) FindByID(ctx context.Context, id int64) (*renewal.Renewal, error) {
	row := r.executor().QueryRowContext(ctx, selectRenewals+` WHERE r.id = $1`, id)
	rn, err := scanRenewal(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeRenewalNotFound, "renewal not found").WithDetail(fmt.Sprintf("id=%d", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load renewal")
	}
	return rn, nil
}

func (r *postgresRenewalRepo) FindByIDs(ctx context.Context, ids []int64) ([]*renewal.Renewal, error) {
	if len(ids) == 0 {
		return []*renewal.Renewal{}, nil
	}
	rows, err := r.executor().QueryContext(ctx, selectRenewals+` WHERE r.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load renewals")
	}
	found, err := collectRenewals(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*renewal.Renewal, len(found))
	for _, rn := range found {
		byID[rn.ID] = rn
	}
	out := make([]*renewal.Renewal, 0, len(found))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if rn, ok := byID[id]; ok && !seen[id] {
			out = append(out, rn)
			seen[id] = true
		}
	}
	return out, nil
}

func (r *postgresRenewalRepo) ListByPortfolio(ctx context.Context, portfolioID int64, opts ...renewal.QueryOption) ([]*renewal.Renewal, error) {
	o := renewal.ApplyQueryOptions(opts...)

	var sb strings.Builder
	sb.WriteString(selectRenewals)
	sb.WriteString(` WHERE r.portfolio_id = $1`)
	args := []interface{}{portfolioID}
	if o.Instruction != nil {
		args = append(args, string(*o.Instruction))
		fmt.Fprintf(&sb, ` AND r.current_instruction = $%d`, len(args))
	}
	sb.WriteString(` ORDER BY r.id`)
	if o.Limit > 0 {
		args = append(args, o.Limit, o.Offset)
		fmt.Fprintf(&sb, ` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.executor().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list renewals")
	}
	return collectRenewals(rows)
}

// CreateBatch inserts every renewal and its price.  Without an enclosing
// transaction it opens one so the batch lands whole.
func (r *postgresRenewalRepo) CreateBatch(ctx context.Context, renewals []*renewal.Renewal) error {
	if len(renewals) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, rn := range renewals {
			if err := insertRenewal(ctx, tx, rn); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertRenewal(ctx context.Context, exec queryExecutor, rn *renewal.Renewal) error {
	err := exec.QueryRowContext(ctx, `
		INSERT INTO renewals (
			portfolio_id, country, serial_no, ucid, description, renewal_sequence,
			due_date, grace_date, current_instruction, confidence
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		rn.PortfolioID, rn.Country, rn.SerialNo, rn.UCID, rn.Description, rn.Sequence,
		rn.DueDate, rn.GraceDate, string(rn.CurrentInstruction), string(rn.Confidence),
	).Scan(&rn.ID, &rn.CreatedAt, &rn.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return errors.New(errors.ErrCodePortfolioNotFound, "portfolio not found").WithDetail(fmt.Sprintf("id=%d", rn.PortfolioID))
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert renewal")
	}

	p := rn.Price
	if p == nil {
		p = &renewal.RenewalPrice{}
		rn.Price = p
	}
	p.RenewalID = rn.ID
	err = exec.QueryRowContext(ctx, `
		INSERT INTO renewal_prices (
			renewal_id,
			due_price, due_currency, grace_price, grace_currency,
			claim_price, claim_currency, agent_price, agent_currency,
			calculated_due_price, calculated_grace_price, calculated_claim_price, calculated_agent_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		p.RenewalID,
		p.Due.Price, p.Due.Currency, p.Grace.Price, p.Grace.Currency,
		p.Claim.Price, p.Claim.Currency, p.Agent.Price, p.Agent.Currency,
		p.CalculatedDuePrice, p.CalculatedGracePrice, p.CalculatedClaimPrice, p.CalculatedAgentPrice,
	).Scan(&p.ID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert renewal price")
	}
	return nil
}

func (r *postgresRenewalRepo) UpdateInstruction(ctx context.Context, rn *renewal.Renewal) error {
	err := r.executor().QueryRowContext(ctx, `
		UPDATE renewals
		SET current_instruction = $1, confidence = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`,
		string(rn.CurrentInstruction), string(rn.Confidence), rn.ID,
	).Scan(&rn.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.New(errors.ErrCodeRenewalNotFound, "renewal not found").WithDetail(fmt.Sprintf("id=%d", rn.ID))
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update renewal instruction")
	}
	return nil
}

func (r *postgresRenewalRepo) ListPrices(ctx context.Context, afterID int64, limit int) ([]*renewal.RenewalPrice, error) {
	rows, err := r.executor().QueryContext(ctx, `SELECT `+priceColumns+`
		FROM renewal_prices p
		WHERE p.id > $1
		ORDER BY p.id
		LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list renewal prices")
	}
	defer rows.Close()

	var out []*renewal.RenewalPrice
	for rows.Next() {
		var (
			id, renewalID sql.NullInt64
			p             renewal.RenewalPrice
		)
		if err := rows.Scan(priceTargets(&id, &renewalID, &p)...); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan renewal price")
		}
		p.ID, p.RenewalID = id.Int64, renewalID.Int64
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate renewal prices")
	}
	return out, nil
}

func (r *postgresRenewalRepo) UpdateCalculatedPrices(ctx context.Context, p *renewal.RenewalPrice) error {
	res, err := r.executor().ExecContext(ctx, `
		UPDATE renewal_prices
		SET calculated_due_price = $1, calculated_grace_price = $2,
			calculated_claim_price = $3, calculated_agent_price = $4
		WHERE id = $5`,
		p.CalculatedDuePrice, p.CalculatedGracePrice, p.CalculatedClaimPrice, p.CalculatedAgentPrice, p.ID,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update renewal price")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeRenewalNotFound, "renewal price not found").WithDetail(fmt.Sprintf("id=%d", p.ID))
	}
	return nil
}

// WithTx runs fn on a transactional copy.  Nested calls join the outer
// transaction.
func (r *postgresRenewalRepo) WithTx(ctx context.Context, fn func(renewal.Repository) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&postgresRenewalRepo{baseRepo: baseRepo{conn: r.conn, tx: tx, log: r.log}})
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

// priceTargets lists scan destinations in priceColumns order.  The calculated
// columns go through NullDecimal so a LEFT JOIN miss scans cleanly.
func priceTargets(id, renewalID *sql.NullInt64, p *renewal.RenewalPrice) []interface{} {
	return []interface{}{
		id, renewalID,
		&p.Due.Price, (*nullString)(&p.Due.Currency), &p.Grace.Price, (*nullString)(&p.Grace.Currency),
		&p.Claim.Price, (*nullString)(&p.Claim.Currency), &p.Agent.Price, (*nullString)(&p.Agent.Currency),
		(*zeroDecimal)(&p.CalculatedDuePrice), (*zeroDecimal)(&p.CalculatedGracePrice),
		(*zeroDecimal)(&p.CalculatedClaimPrice), (*zeroDecimal)(&p.CalculatedAgentPrice),
	}
}

func scanRenewal(row scanner) (*renewal.Renewal, error) {
	var (
		rn                 renewal.Renewal
		instruction, conf  string
		priceID, renewalID sql.NullInt64
		p                  renewal.RenewalPrice
	)
	dest := []interface{}{
		&rn.ID, &rn.PortfolioID, &rn.Country, &rn.SerialNo, &rn.UCID, &rn.Description,
		&rn.Sequence, &rn.DueDate, &rn.GraceDate, &instruction, &conf,
		&rn.CreatedAt, &rn.UpdatedAt,
	}
	dest = append(dest, priceTargets(&priceID, &renewalID, &p)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rn.CurrentInstruction = renewal.Instruction(instruction)
	rn.Confidence = renewal.Confidence(conf)
	if priceID.Valid {
		p.ID, p.RenewalID = priceID.Int64, renewalID.Int64
		rn.Price = &p
	}
	return &rn, nil
}

func collectRenewals(rows *sql.Rows) ([]*renewal.Renewal, error) {
	defer rows.Close()
	out := []*renewal.Renewal{}
	for rows.Next() {
		rn, err := scanRenewal(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan renewal")
		}
		out = append(out, rn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate renewals")
	}
	return out, nil
}

// nullString scans NULL as "".
type nullString string

func (s *nullString) Scan(src interface{}) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}
	*s = nullString(ns.String)
	return nil
}

// zeroDecimal scans NULL as zero.
type zeroDecimal decimal.Decimal

func (z *zeroDecimal) Scan(src interface{}) error {
	var nd decimal.NullDecimal
	if err := nd.Scan(src); err != nil {
		return err
	}
	if !nd.Valid {
		*z = zeroDecimal(decimal.Zero)
		return nil
	}
	*z = zeroDecimal(nd.Decimal)
	return nil
}

//Personal.AI order the ending
