// Package renewal models patent-renewal fee events: building them from
// matter-provider payloads, pricing them in the base currency, and the
// instruction/confidence workflow a user drives on them.
package renewal

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Matter is the provider's identity for a patent application.  It is the
// authoritative source of a renewal's country, serial number and ucid.
type Matter struct {
	UCID               string `json:"matterUcid"`
	ApplicationCountry string `json:"applicationCountry"`
	SerialNumber       string `json:"serialNumber"`
}

// Renewal is one fee-due event for a Matter.
type Renewal struct {
	ID          int64  `json:"id"`
	PortfolioID int64  `json:"portfolio_id"`
	Country     string `json:"country"`
	SerialNo    string `json:"serial_no"`
	UCID        string `json:"ucid"`
	Description string `json:"description"`
	// Sequence, DueDate and GraceDate are provider strings kept verbatim.
	Sequence           string        `json:"renewal_sequence,omitempty"`
	DueDate            string        `json:"due_date"`
	GraceDate          string        `json:"grace_date"`
	CurrentInstruction Instruction   `json:"current_instruction"`
	Confidence         Confidence    `json:"confidence,omitempty"`
	Price              *RenewalPrice `json:"renewal_price,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// IsDomestic reports whether the renewal's country equals domestic,
// ignoring case.
func (r *Renewal) IsDomestic(domestic string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Country), domestic)
}

// FeeTotal returns the sum of the four calculated prices, or zero when the
// renewal has no price record.
func (r *Renewal) FeeTotal() decimal.Decimal {
	if r.Price == nil {
		return decimal.Zero
	}
	return r.Price.Total()
}

// FeeKind names one of the four fee categories of a RenewalPrice.
type FeeKind string

const (
	FeeDue   FeeKind = "due"
	FeeGrace FeeKind = "grace"
	FeeClaim FeeKind = "claim"
	FeeAgent FeeKind = "agent"
)

// FeeKinds lists the categories in storage order.
var FeeKinds = []FeeKind{FeeDue, FeeGrace, FeeClaim, FeeAgent}

// Fee is a raw provider amount with its currency code.
type Fee struct {
	Price    decimal.NullDecimal `json:"price"`
	Currency string              `json:"currency,omitempty"`
}

// RenewalPrice is the 1:1 fee breakdown of a Renewal.  Each Calculated* field
// is its own raw amount converted at its own currency's rate.
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

// Fee returns the raw fee for kind.
func (p *RenewalPrice) Fee(kind FeeKind) Fee {
	switch kind {
	case FeeDue:
		return p.Due
	case FeeGrace:
		return p.Grace
	case FeeClaim:
		return p.Claim
	case FeeAgent:
		return p.Agent
	}
	return Fee{}
}

// SetFee replaces the raw fee for kind.
func (p *RenewalPrice) SetFee(kind FeeKind, f Fee) {
	switch kind {
	case FeeDue:
		p.Due = f
	case FeeGrace:
		p.Grace = f
	case FeeClaim:
		p.Claim = f
	case FeeAgent:
		p.Agent = f
	}
}

// Calculated returns the converted amount for kind.
func (p *RenewalPrice) Calculated(kind FeeKind) decimal.Decimal {
	switch kind {
	case FeeDue:
		return p.CalculatedDuePrice
	case FeeGrace:
		return p.CalculatedGracePrice
	case FeeClaim:
		return p.CalculatedClaimPrice
	case FeeAgent:
		return p.CalculatedAgentPrice
	}
	return decimal.Zero
}

// SetCalculated replaces the converted amount for kind.
func (p *RenewalPrice) SetCalculated(kind FeeKind, v decimal.Decimal) {
	switch kind {
	case FeeDue:
		p.CalculatedDuePrice = v
	case FeeGrace:
		p.CalculatedGracePrice = v
	case FeeClaim:
		p.CalculatedClaimPrice = v
	case FeeAgent:
		p.CalculatedAgentPrice = v
	}
}

// Total sums the four calculated prices.
func (p *RenewalPrice) Total() decimal.Decimal {
	return p.CalculatedDuePrice.
		Add(p.CalculatedGracePrice).
		Add(p.CalculatedClaimPrice).
		Add(p.CalculatedAgentPrice)
}

//Personal.AI order the ending
