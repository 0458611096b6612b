package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fee is a raw provider amount with its currency code.  Price is invalid
// when the provider sent no amount.
type Fee struct {
	Price    decimal.NullDecimal `json:"price"`
	Currency string              `json:"currency,omitempty"`
}

// RenewalPrice is the fee breakdown of one renewal with every amount
// converted to the base currency.
type RenewalPrice struct {
	ID        int64 `json:"id"`
	RenewalID int64 `json:"renewal_id"`

	Due   Fee `json:"due"`
	Grace Fee `json:"grace"`
	Claim Fee `json:"claim"`
	Agent Fee `json:"agent"`

	CalculatedDuePrice   decimal.Decimal `json:"calculated_due_price"`
	CalculatedGracePrice decimal.Decimal `json:"calculated_grace_price"`
	CalculatedClaimPrice decimal.Decimal `json:"calculated_claim_price"`
	CalculatedAgentPrice decimal.Decimal `json:"calculated_agent_price"`
}

// Renewal is one renewal event of a patent matter.
type Renewal struct {
	ID                 int64         `json:"id"`
	PortfolioID        int64         `json:"portfolio_id"`
	Country            string        `json:"country"`
	SerialNo           string        `json:"serial_no"`
	UCID               string        `json:"ucid"`
	Description        string        `json:"description"`
	Sequence           string        `json:"renewal_sequence,omitempty"`
	DueDate            string        `json:"due_date"`
	GraceDate          string        `json:"grace_date"`
	CurrentInstruction string        `json:"current_instruction"`
	Confidence         string        `json:"confidence,omitempty"`
	Price              *RenewalPrice `json:"renewal_price,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// RenewalList is the body of every endpoint answering with renewals.
type RenewalList struct {
	Renewals []Renewal `json:"renewals"`
	Count    int       `json:"count"`
}

// InstructionUpdate changes one renewal's instruction and/or confidence.
// Nil fields are left as they are.
type InstructionUpdate struct {
	ID                 int64   `json:"id"`
	CurrentInstruction *string `json:"current_instruction,omitempty"`
	Confidence         *string `json:"confidence,omitempty"`
}

// Matter identifies the patent matter renewals are ingested for.
type Matter struct {
	UCID               string `json:"matterUcid"`
	ApplicationCountry string `json:"applicationCountry"`
	SerialNumber       string `json:"serialNumber"`
}

// IngestRequest carries a provider renewal payload for one matter.  Renewals
// are passed through to the server untouched.
type IngestRequest struct {
	PortfolioID int64         `json:"portfolio_id"`
	Matter      Matter        `json:"matter"`
	Renewals    []interface{} `json:"renewals"`
}

// BhipPrice is the fee-table row a surcharge was resolved from.
type BhipPrice struct {
	ID       int64           `json:"id"`
	CostType string          `json:"cost_type"`
	CostID   int64           `json:"cost_id"`
	USPrice  decimal.Decimal `json:"us_price"`
	FNPrice  decimal.Decimal `json:"fn_price"`
}

// BhipResolution is the surcharge applied to one renewal.  Tier is empty
// and Amount zero when no fee-table row matched.
type BhipResolution struct {
	RenewalID int64           `json:"renewal_id"`
	Tier      string          `json:"tier"`
	Amount    decimal.Decimal `json:"amount"`
	Record    *BhipPrice      `json:"record,omitempty"`
}

// PayTotal sums the renewals of a portfolio instructed to pay.
type PayTotal struct {
	PortfolioID int64           `json:"portfolio_id"`
	Renewals    int             `json:"renewals"`
	Fees        decimal.Decimal `json:"fees"`
	Surcharge   decimal.Decimal `json:"surcharge"`
	Total       decimal.Decimal `json:"total"`
}

// Currency is one row of the rate table.
type Currency struct {
	Name      string          `json:"name"`
	ToBase    decimal.Decimal `json:"to_base"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CurrencyTable is a snapshot of the rate table.
type CurrencyTable struct {
	Currencies []Currency `json:"currencies"`
	Count      int        `json:"count"`
	LoadedAt   time.Time  `json:"loaded_at"`
}

// Rate is one row of a rate import.
type Rate struct {
	Code   string          `json:"code"`
	ToBase decimal.Decimal `json:"to_base"`
}

//Personal.AI order the ending
