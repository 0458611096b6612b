// Package events defines the domain events the application layer emits and
// the port it emits them through.  The Kafka adapter in
// infrastructure/messaging/kafka implements Publisher.
package events

import (
	"context"
	"time"
)

// Type names an event.  Each type maps onto one Kafka topic.
type Type string

const (
	RenewalsIngested           Type = "renewal.ingested"
	RenewalInstructionsUpdated Type = "renewal.instructions.updated"
	CurrencyRatesUpdated       Type = "currency.rates.updated"
)

// Event is one emitted fact.  Key selects the partition.
type Event struct {
	Type       Type
	Key        string
	Payload    any
	OccurredAt time.Time
}

// Publisher delivers events.  Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, events ...Event) error

func (f PublisherFunc) Publish(ctx context.Context, events ...Event) error {
	return f(ctx, events...)
}

// Nop discards every event.
var Nop Publisher = PublisherFunc(func(context.Context, ...Event) error { return nil })

// New stamps an event with the current time.
func New(t Type, key string, payload any) Event {
	return Event{Type: t, Key: key, Payload: payload, OccurredAt: time.Now().UTC()}
}

// ─────────────────────────────────────────────────────────────────────────────
// Payloads
// ─────────────────────────────────────────────────────────────────────────────

// RenewalsIngestedPayload is emitted after a provider payload is stored.
type RenewalsIngestedPayload struct {
	PortfolioID int64   `json:"portfolio_id"`
	MatterUCID  string  `json:"matter_ucid"`
	RenewalIDs  []int64 `json:"renewal_ids"`
	Source      string  `json:"source"`
}

// InstructionChange is one renewal's state after an instruction batch.
type InstructionChange struct {
	RenewalID   int64  `json:"renewal_id"`
	PortfolioID int64  `json:"portfolio_id"`
	Instruction string `json:"instruction"`
	Confidence  string `json:"confidence,omitempty"`
}

// InstructionsUpdatedPayload is emitted after a batch commits.
type InstructionsUpdatedPayload struct {
	UserID  string              `json:"user_id"`
	Changes []InstructionChange `json:"changes"`
}

// CurrencyRatesUpdatedPayload is emitted after the rate table is replaced.
// Consumers use it to trigger a price refresh.
type CurrencyRatesUpdatedPayload struct {
	Codes      []string  `json:"codes"`
	ImportedAt time.Time `json:"imported_at"`
}

//Personal.AI order the ending
