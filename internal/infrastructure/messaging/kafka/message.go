// Package kafka carries domain events over Kafka with segmentio/kafka-go.
package kafka

import (
	"context"
	"time"
)

// Message is a consumed record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerMessage is a record to publish.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one message.  A returned error triggers retries.
type MessageHandler func(ctx context.Context, msg *Message) error

// Metrics receives per-message outcomes.
type Metrics interface {
	MessagePublished(topic string, err error)
	MessageConsumed(topic string, d time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) MessagePublished(string, error)               {}
func (noopMetrics) MessageConsumed(string, time.Duration, error) {}

//Personal.AI order the ending
