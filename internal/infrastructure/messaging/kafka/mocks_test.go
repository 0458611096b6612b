package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
)

type mockKafkaWriter struct {
	mu        sync.Mutex
	written   []kafka.Message
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	return nil
}

// mockKafkaReader serves queued messages, then blocks until cancelled.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	fetchErr  error
	committed []kafka.Message
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if m.fetchErr != nil {
		err := m.fetchErr
		m.fetchErr = nil
		m.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

type recordedOutcome struct {
	topic string
	err   error
}

type recordingMetrics struct {
	mu        sync.Mutex
	published []recordedOutcome
	consumed  []recordedOutcome
}

func (r *recordingMetrics) MessagePublished(topic string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, recordedOutcome{topic, err})
}

func (r *recordingMetrics) MessageConsumed(topic string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumed = append(r.consumed, recordedOutcome{topic, err})
}

func (r *recordingMetrics) consumedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consumed)
}

func testKafkaConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:         []string{"localhost:9092"},
		GroupID:         "renewals-test",
		MaxRetries:      2,
		RetryBackoff:    time.Millisecond,
		DeadLetterTopic: TopicDeadLetter,
	}
}

//Personal.AI order the ending
