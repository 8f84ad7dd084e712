package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/events"
)

// Publisher delivers domain events to a topic. Key controls partitioning.
type Publisher interface {
	Publish(ctx context.Context, topic, key, eventType string, payload any) error
	Close() error
}

// NewPublisher returns a Kafka publisher when brokers are configured and a log-only publisher otherwise.
func NewPublisher(brokers []string, logger *slog.Logger) Publisher {
	if len(brokers) == 0 {
		return NewLogPublisher(logger)
	}
	return NewKafkaPublisher(brokers)
}

func newEnvelope(eventType string, payload any) events.Envelope {
	id := uuid.NewString()
	if v7, err := uuid.NewV7(); err == nil {
		id = v7.String()
	}
	return events.Envelope{
		ID:         id,
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// KafkaPublisher lazily manages writers per topic.
type KafkaPublisher struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// Publish encodes the payload in an envelope and writes it synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key, eventType string, payload any) error {
	envelope := newEnvelope(eventType, payload)
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
			{Key: "event-id", Value: []byte(envelope.ID)},
		},
		Time: envelope.OccurredAt,
	}
	if err := p.writerForTopic(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", eventType, topic, err)
	}
	return nil
}

func (p *KafkaPublisher) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}

// LogPublisher writes events to the structured log instead of a broker.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event envelope.
func (p *LogPublisher) Publish(ctx context.Context, topic, key, eventType string, payload any) error {
	envelope := newEnvelope(eventType, payload)
	p.logger.InfoContext(ctx, "domain event", "topic", topic, "key", key, "type", eventType, "eventId", envelope.ID)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }
