package pubsub

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/events"
)

func TestNewPublisherSelectsImplementation(t *testing.T) {
	require.IsType(t, &LogPublisher{}, NewPublisher(nil, nil))

	kafkaPublisher := NewPublisher([]string{"localhost:9092"}, nil)
	require.IsType(t, &KafkaPublisher{}, kafkaPublisher)
	require.NoError(t, kafkaPublisher.Close())
}

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	publisher := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := publisher.Publish(context.Background(), TopicReflectionEvents, "refl-1", events.TypeReflectionSubmitted, events.ReflectionSubmitted{ReflectionID: "refl-1"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"topic":"reflection.events"`)
	require.Contains(t, buf.String(), `"type":"reflection.submitted"`)
}

func TestKafkaPublisherReusesWriterPerTopic(t *testing.T) {
	publisher := NewKafkaPublisher([]string{"localhost:9092"})
	first := publisher.writerForTopic(TopicWorkshopEvents)
	second := publisher.writerForTopic(TopicWorkshopEvents)
	other := publisher.writerForTopic(TopicUserEvents)

	require.Same(t, first, second)
	require.NotSame(t, first, other)
	require.NoError(t, publisher.Close())
	require.Empty(t, publisher.writers)
}

func TestNewEnvelope(t *testing.T) {
	envelope := newEnvelope(events.TypeWorkshopCreated, events.WorkshopCreated{WorkshopID: "w1"})
	require.NotEmpty(t, envelope.ID)
	require.Equal(t, events.TypeWorkshopCreated, envelope.Type)
	require.False(t, envelope.OccurredAt.IsZero())
}
