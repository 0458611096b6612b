// Package worker binds Kafka topics to application calls for the background
// process.  Today that is one binding: a currency rate import triggers a
// recomputation of every stored renewal price.
package worker

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/turtacn/KeyIP-Renewals/internal/application/events"
	appRenewal "github.com/turtacn/KeyIP-Renewals/internal/application/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
)

const defaultHandlerTimeout = 5 * time.Minute

// PriceRefresher recomputes stored prices.  *appRenewal.Service satisfies it.
type PriceRefresher interface {
	RefreshPrices(ctx context.Context) (*appRenewal.RefreshResult, error)
}

// Subscriber registers topic handlers.  *kafka.Consumer satisfies it.
type Subscriber interface {
	Subscribe(topic string, handler kafka.MessageHandler)
}

// Handlers holds the worker's message handlers.
type Handlers struct {
	refresher PriceRefresher
	logger    logging.Logger
	timeout   time.Duration
}

// Option customises Handlers.
type Option func(*Handlers)

// WithHandlerTimeout bounds one handler invocation.
func WithHandlerTimeout(d time.Duration) Option {
	return func(h *Handlers) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHandlers creates the handler set.
func NewHandlers(refresher PriceRefresher, logger logging.Logger, opts ...Option) *Handlers {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &Handlers{refresher: refresher, logger: logger.Named("worker"), timeout: defaultHandlerTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register subscribes every handler.
func (h *Handlers) Register(sub Subscriber) {
	sub.Subscribe(kafka.TopicCurrencyRatesUpdated, h.HandleCurrencyRatesUpdated)
}

// HandleCurrencyRatesUpdated refreshes prices after a rate import.  A refresh
// already running elsewhere covers this event, so that case succeeds.
func (h *Handlers) HandleCurrencyRatesUpdated(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	if env.EventType != string(events.CurrencyRatesUpdated) {
		h.logger.Warn("unexpected event type on topic",
			logging.String("topic", msg.Topic),
			logging.String("event_type", env.EventType))
		return nil
	}
	var payload events.CurrencyRatesUpdatedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.refresher.RefreshPrices(ctx)
	if stderrors.Is(err, appRenewal.ErrRefreshInProgress) {
		h.logger.Info("price refresh already running, skipping",
			logging.String("event_id", env.EventID))
		return nil
	}
	if err != nil {
		return err
	}
	h.logger.Info("prices refreshed after rate import",
		logging.String("event_id", env.EventID),
		logging.Int("currencies", len(payload.Codes)),
		logging.Int("scanned", res.Scanned),
		logging.Int("changed", res.Changed))
	return nil
}

//Personal.AI order the ending
