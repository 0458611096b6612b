package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeMessageQueueError, "producer closed")

const defaultMaxMessageBytes = 1 << 20

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes messages with key-hash partitioning so events for one key
// stay ordered.
type Producer struct {
	writer   WriterInterface
	logger   logging.Logger
	metrics  Metrics
	maxBytes int
	closed   atomic.Bool
}

type ProducerOption func(*Producer)

func WithProducerMetrics(m Metrics) ProducerOption {
	return func(p *Producer) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithWriter swaps the kafka.Writer, mainly for tests.
func WithWriter(w WriterInterface) ProducerOption {
	return func(p *Producer) { p.writer = w }
}

func NewProducer(cfg config.KafkaConfig, logger logging.Logger, opts ...ProducerOption) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka max_retries must be >= 0")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	p := &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.Hash{},
			MaxAttempts:  cfg.MaxRetries + 1,
			BatchSize:    batchSize,
			BatchTimeout: 50 * time.Millisecond,
			WriteTimeout: writeTimeout,
			RequiredAcks: requiredAcks(cfg.RequiredAcks),
			Transport:    &kafka.Transport{ClientID: cfg.ClientID, DialTimeout: 10 * time.Second},
		},
		logger:   logger.Named("kafka-producer"),
		metrics:  noopMetrics{},
		maxBytes: defaultMaxMessageBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func requiredAcks(n int) kafka.RequiredAcks {
	switch {
	case n < 0:
		return kafka.RequireAll
	case n == 0:
		return kafka.RequireNone
	default:
		return kafka.RequireOne
	}
}

// Publish writes msgs in one call.  Every message is validated first.
func (p *Producer) Publish(ctx context.Context, msgs ...*ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		if msg.Topic == "" {
			return errors.New(errors.ErrCodeValidation, "message topic required")
		}
		if len(msg.Value) == 0 {
			return errors.New(errors.ErrCodeValidation, "message value required").WithDetail(msg.Topic)
		}
		if len(msg.Value) > p.maxBytes {
			return errors.New(errors.ErrCodeValidation, "message too large").WithDetail(msg.Topic)
		}
		out[i] = toKafkaMessage(msg)
	}

	err := p.writer.WriteMessages(ctx, out...)
	p.record(msgs, err)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish failed")
	}
	p.logger.Debug("messages published", logging.Int("count", len(msgs)), logging.String("topic", msgs[0].Topic))
	return nil
}

// record reports per-message outcomes, using kafka.WriteErrors when the
// writer returns them.
func (p *Producer) record(msgs []*ProducerMessage, err error) {
	writeErrs, perMessage := err.(kafka.WriteErrors)
	for i, msg := range msgs {
		switch {
		case err == nil:
			p.metrics.MessagePublished(msg.Topic, nil)
		case perMessage && i < len(writeErrs):
			p.metrics.MessagePublished(msg.Topic, writeErrs[i])
		default:
			p.metrics.MessagePublished(msg.Topic, err)
		}
	}
}

func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.logger.Info("kafka producer closed")
	return p.writer.Close()
}

func toKafkaMessage(msg *ProducerMessage) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    ts,
	}
}

//Personal.AI order the ending
