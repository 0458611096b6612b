package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/turtacn/KeyIP-Renewals/internal/application/events"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// Topic names.  Event topics share the event type string.
const (
	TopicRenewalIngested            = string(events.RenewalsIngested)
	TopicRenewalInstructionsUpdated = string(events.RenewalInstructionsUpdated)
	TopicCurrencyRatesUpdated       = string(events.CurrencyRatesUpdated)
	TopicDeadLetter                 = "renewal.dead_letter"
)

const schemaVersion = "v1"

// EventEnvelope wraps every payload on the wire.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.  An absent payload leaves
// target untouched.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload").WithDetail(e.EventType)
	}
	return nil
}

func (e *EventEnvelope) ToMessage(topic string, key []byte) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &ProducerMessage{
		Topic: topic,
		Key:   key,
		Value: val,
		Headers: map[string]string{
			"event_id":       e.EventID,
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value").WithDetail(msg.Topic)
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Topic administration
// ─────────────────────────────────────────────────────────────────────────────

// TopicConfig describes one topic to create.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to dial kafka")
	}
	return newTopicManager(conn, logger), nil
}

func newTopicManager(conn ConnInterface, logger logging.Logger) *TopicManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger}
}

// CreateTopic is idempotent.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if cfg.NumPartitions <= 0 || cfg.ReplicationFactor <= 0 {
		return errors.New(errors.ErrCodeValidation, "partitions and replication factor must be > 0").WithDetail(cfg.Name)
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", cfg.RetentionMs)})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create topic").WithDetail(cfg.Name)
	}
	m.logger.Info("topic created", logging.String("topic", cfg.Name))
	return nil
}

func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, topic := range topics {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

const day = int64(24 * time.Hour / time.Millisecond)

// DefaultTopics lists the topics the service produces or consumes.
func DefaultTopics(replication int) []TopicConfig {
	if replication <= 0 {
		replication = 1
	}
	return []TopicConfig{
		{Name: TopicRenewalIngested, NumPartitions: 6, ReplicationFactor: replication, RetentionMs: 7 * day},
		{Name: TopicRenewalInstructionsUpdated, NumPartitions: 6, ReplicationFactor: replication, RetentionMs: 30 * day},
		{Name: TopicCurrencyRatesUpdated, NumPartitions: 1, ReplicationFactor: replication, RetentionMs: 7 * day},
		{Name: TopicDeadLetter, NumPartitions: 3, ReplicationFactor: replication, RetentionMs: 30 * day},
	}
}

//Personal.AI order the ending
