package kafka

import (
	"context"

	"github.com/turtacn/KeyIP-Renewals/internal/application/events"
)

// EventPublisher adapts a Producer to events.Publisher.  Each event goes to
// the topic named by its type, keyed by Event.Key.
type EventPublisher struct {
	producer interface {
		Publish(ctx context.Context, msgs ...*ProducerMessage) error
	}
	source string
}

func NewEventPublisher(p *Producer, source string) *EventPublisher {
	return &EventPublisher{producer: p, source: source}
}

func (p *EventPublisher) Publish(ctx context.Context, evs ...events.Event) error {
	msgs := make([]*ProducerMessage, 0, len(evs))
	for _, ev := range evs {
		env, err := NewEventEnvelope(string(ev.Type), p.source, ev.Payload)
		if err != nil {
			return err
		}
		if !ev.OccurredAt.IsZero() {
			env.Timestamp = ev.OccurredAt
		}
		msg, err := env.ToMessage(string(ev.Type), []byte(ev.Key))
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return p.producer.Publish(ctx, msgs...)
}

var _ events.Publisher = (*EventPublisher)(nil)

//Personal.AI order the ending
