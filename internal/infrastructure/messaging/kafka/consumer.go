package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

var (
	ErrAlreadyRunning  = errors.New(errors.ErrCodeConflict, "consumer already running")
	ErrNoSubscriptions = errors.New(errors.ErrCodeValidation, "consumer has no subscriptions")
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterPublisher receives messages whose retries are exhausted.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msgs ...*ProducerMessage) error
}

// Consumer reads a consumer group and dispatches by topic.  A message is
// committed once its handler succeeds or it has been dead-lettered.
type Consumer struct {
	cfg        config.KafkaConfig
	logger     logging.Logger
	metrics    Metrics
	newReader  func(topics []string) ReaderInterface
	reader     ReaderInterface
	deadLetter DeadLetterPublisher

	handlers map[string]MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	fetchBackoff    time.Duration
	maxRetryBackoff time.Duration
}

type ConsumerOption func(*Consumer)

func WithConsumerMetrics(m Metrics) ConsumerOption {
	return func(c *Consumer) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithDeadLetter routes exhausted messages to cfg.DeadLetterTopic via p.
func WithDeadLetter(p DeadLetterPublisher) ConsumerOption {
	return func(c *Consumer) { c.deadLetter = p }
}

// WithReader swaps the kafka.Reader, mainly for tests.
func WithReader(r ReaderInterface) ConsumerOption {
	return func(c *Consumer) {
		c.newReader = func([]string) ReaderInterface { return r }
	}
}

func NewConsumer(cfg config.KafkaConfig, logger logging.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka group_id required")
	}
	if cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest" {
		return nil, errors.New(errors.ErrCodeValidation, "invalid auto_offset_reset").WithDetail(cfg.AutoOffsetReset)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	c := &Consumer{
		cfg:             cfg,
		logger:          logger.Named("kafka-consumer"),
		metrics:         noopMetrics{},
		handlers:        make(map[string]MessageHandler),
		fetchBackoff:    time.Second,
		maxRetryBackoff: 30 * time.Second,
	}
	c.newReader = c.kafkaReader
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Consumer) kafkaReader(topics []string) ReaderInterface {
	start := kafka.FirstOffset
	if c.cfg.AutoOffsetReset == "latest" {
		start = kafka.LastOffset
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.cfg.Brokers,
		GroupID:     c.cfg.GroupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxWait:     time.Second,
		StartOffset: start,
		Dialer:      &kafka.Dialer{ClientID: c.cfg.ClientID, Timeout: 10 * time.Second, DualStack: true},
	})
}

// Subscribe registers handler for topic.  Call before Start.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

func (c *Consumer) topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.handlers))
	for t := range c.handlers {
		out = append(out, t)
	}
	return out
}

// Start launches the fetch loop and returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	topics := c.topics()
	if len(topics) == 0 {
		return ErrNoSubscriptions
	}
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}

	c.reader = c.newReader(topics)
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("kafka consumer started", logging.String("group", c.cfg.GroupID), logging.Any("topics", topics))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.fetchBackoff):
			}
			continue
		}

		msg := fromKafkaMessage(m)
		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		if ok {
			start := time.Now()
			err = c.process(ctx, msg, handler)
			c.metrics.MessageConsumed(m.Topic, time.Since(start), err)
			if err != nil && ctx.Err() != nil {
				// Shutting down mid-retry; leave the offset for the next owner.
				return
			}
		} else {
			c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", logging.String("topic", m.Topic), logging.Int64("offset", m.Offset), logging.Err(err))
		}
	}
}

// process runs handler with exponential backoff and dead-letters the message
// when retries run out.  It returns the last handler error.
func (c *Consumer) process(ctx context.Context, msg *Message, handler MessageHandler) error {
	err := handler(ctx, msg)
	backoff := c.cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	for i := 0; err != nil && i < c.cfg.MaxRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		err = handler(ctx, msg)
		backoff *= 2
		if backoff > c.maxRetryBackoff {
			backoff = c.maxRetryBackoff
		}
	}
	if err == nil {
		return nil
	}

	c.logger.Error("message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err))

	if c.deadLetter != nil && c.cfg.DeadLetterTopic != "" {
		headers := make(map[string]string, len(msg.Headers)+2)
		for k, v := range msg.Headers {
			headers[k] = v
		}
		headers["original_topic"] = msg.Topic
		headers["error_message"] = err.Error()
		dl := &ProducerMessage{Topic: c.cfg.DeadLetterTopic, Key: msg.Key, Value: msg.Value, Headers: headers}
		if dlErr := c.deadLetter.Publish(ctx, dl); dlErr != nil {
			c.logger.Error("dead letter publish failed", logging.Err(dlErr))
		}
	}
	return err
}

// Close stops the loop and waits for the in-flight message.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	c.wg.Wait()
	c.logger.Info("kafka consumer closed")
	return c.reader.Close()
}

func fromKafkaMessage(m kafka.Message) *Message {
	msg := &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

//Personal.AI order the ending
