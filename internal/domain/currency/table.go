// Package currency holds the exchange-rate snapshot used to express renewal
// fees in the base currency.
package currency

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// Currency is one row of the rate table: the amount of base currency that one
// unit of Name buys.
type Currency struct {
	Name      string          `json:"name"`
	ToBase    decimal.Decimal `json:"to_base"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate checks a single row.
func (c Currency) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.ErrCodeCurrencyCodeInvalid, "currency name is required")
	}
	if c.ToBase.IsNegative() {
		return errors.New(errors.ErrCodeCurrencyRateInvalid, "currency rate cannot be negative").
			WithDetail(c.Name + "=" + c.ToBase.String())
	}
	return nil
}

// Table is an immutable snapshot of the rate table.  A Table is built once per
// load and shared read-only; a refresh produces a new Table.
type Table struct {
	rates    map[string]decimal.Decimal
	loadedAt time.Time
}

// NewTable builds a snapshot from rows.  Names are unique; a repeated name is
// rejected rather than silently overwritten.
func NewTable(rows []Currency) (*Table, error) {
	rates := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, err
		}
		if _, dup := rates[row.Name]; dup {
			return nil, errors.New(errors.ErrCodeCurrencyDuplicate, "duplicate currency in rate table").WithDetail(row.Name)
		}
		rates[row.Name] = row.ToBase
	}
	return &Table{rates: rates, loadedAt: time.Now().UTC()}, nil
}

// EmptyTable returns a snapshot with no rows.  Every conversion against it
// yields zero.
func EmptyTable() *Table {
	return &Table{rates: map[string]decimal.Decimal{}, loadedAt: time.Now().UTC()}
}

// Rate returns the to-base rate for code.
func (t *Table) Rate(code string) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	r, ok := t.rates[code]
	return r, ok
}

// Len returns the number of currencies in the snapshot.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rates)
}

// Codes returns the currency names in ascending order.
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Currencies returns the rows of the snapshot ordered by name.
func (t *Table) Currencies() []Currency {
	codes := t.Codes()
	out := make([]Currency, 0, len(codes))
	for _, code := range codes {
		out = append(out, Currency{Name: code, ToBase: t.rates[code], UpdatedAt: t.loadedAt})
	}
	return out
}

// LoadedAt reports when the snapshot was built.
func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}

// ─────────────────────────────────────────────────────────────────────────────
// Loading
// ─────────────────────────────────────────────────────────────────────────────

// Repository persists the rate table.
type Repository interface {
	ListAll(ctx context.Context) ([]Currency, error)
	// ReplaceAll swaps the whole table atomically.
	ReplaceAll(ctx context.Context, rows []Currency) error
}

// TableSource produces a fresh snapshot.  Callers load once per build or
// update call and pass the Table down explicitly.
type TableSource interface {
	Load(ctx context.Context) (*Table, error)
}

// RepositorySource loads snapshots straight from a Repository.
type RepositorySource struct {
	repo Repository
}

// NewRepositorySource wraps repo as a TableSource.
func NewRepositorySource(repo Repository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

// Load reads every row and builds a Table.
func (s *RepositorySource) Load(ctx context.Context) (*Table, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to load currency table")
	}
	return NewTable(rows)
}

//Personal.AI order the ending
