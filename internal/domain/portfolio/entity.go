// Package portfolio models the ownership side of renewals: clients own
// portfolios, portfolios group renewals, and either may carry a BHIP service
// surcharge override.
package portfolio

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// Client owns portfolios.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Portfolio groups renewals and belongs to a Client.  ClientID is zero when
// the portfolio has no owning client on record.
type Portfolio struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks required fields.
func (p *Portfolio) Validate() error {
	if p.ID <= 0 {
		return errors.InvalidParam("portfolio id must be positive")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.InvalidParam("portfolio name cannot be empty")
	}
	return nil
}

// CostType tags which entity a BhipPrice belongs to.
type CostType string

const (
	CostTypeClient    CostType = "Client"
	CostTypePortfolio CostType = "Portfolio"
)

// IsValid reports whether t is a known cost type.
func (t CostType) IsValid() bool {
	return t == CostTypeClient || t == CostTypePortfolio
}

// BhipPrice is an administratively configured surcharge split by domestic
// (USPrice) and foreign (FNPrice) jurisdiction.
type BhipPrice struct {
	ID       int64           `json:"id"`
	CostType CostType        `json:"cost_type"`
	CostID   int64           `json:"cost_id"`
	USPrice  decimal.Decimal `json:"us_price"`
	FNPrice  decimal.Decimal `json:"fn_price"`
}

// PriceFor selects USPrice for domestic renewals and FNPrice otherwise.
func (b *BhipPrice) PriceFor(domestic bool) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	if domestic {
		return b.USPrice
	}
	return b.FNPrice
}

//Personal.AI order the ending
