package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	Err       error
	lastTopic string
	lastKey   string
	lastEvent any
	closed    bool
}

func (m *MockPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	m.lastTopic = topic
	m.lastKey = key
	m.lastEvent = event
	return m.Err
}

func (m *MockPublisher) Close() error {
	m.closed = true
	return nil
}

func committed() ProductionCommitted {
	return ProductionCommitted{
		RunID:       uuid.MustParse("8a7f0a52-3f7c-4b53-9a57-1a4c3f6f2b11"),
		ProductID:   12,
		ProductName: "Premium Chair",
		Quantity:    5,
		Consumed: []MaterialConsumed{
			{MaterialID: 1, Quantity: 25, RemainingStock: 5},
		},
		CommittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotifier_ProductionCommitted(t *testing.T) {
	t.Run("Default topic and product key", func(t *testing.T) {
		pub := &MockPublisher{}
		n := NewNotifier(pub, "")

		err := n.ProductionCommitted(context.Background(), committed())

		require.NoError(t, err)
		assert.Equal(t, TopicProductionCommitted, pub.lastTopic)
		assert.Equal(t, "product-12", pub.lastKey)
		assert.Equal(t, committed(), pub.lastEvent)
	})

	t.Run("Custom topic", func(t *testing.T) {
		pub := &MockPublisher{}
		n := NewNotifier(pub, "factory.production")

		require.NoError(t, n.ProductionCommitted(context.Background(), committed()))
		assert.Equal(t, "factory.production", pub.lastTopic)
	})

	t.Run("Publisher error is returned", func(t *testing.T) {
		boom := errors.New("broker down")
		n := NewNotifier(&MockPublisher{Err: boom}, "")

		assert.ErrorIs(t, n.ProductionCommitted(context.Background(), committed()), boom)
	})
}

func TestProductionCommitted_JSON(t *testing.T) {
	payload, err := json.Marshal(committed())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"runId": "8a7f0a52-3f7c-4b53-9a57-1a4c3f6f2b11",
		"productId": 12,
		"productName": "Premium Chair",
		"quantity": 5,
		"consumed": [{"materialId": 1, "quantity": 25, "remainingStock": 5}],
		"committedAt": "2026-03-01T12:00:00Z"
	}`, string(payload))
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	pub := NewLogPublisher(log)

	err := pub.PublishEvent(context.Background(), TopicProductionCommitted, "product-12", committed())

	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "event", line["msg"])
	assert.Equal(t, TopicProductionCommitted, line["topic"])
	assert.Equal(t, "product-12", line["key"])
	payload, ok := line["payload"].(map[string]any)
	require.True(t, ok, "payload should be logged as a JSON object")
	assert.Equal(t, "Premium Chair", payload["productName"])
	assert.NoError(t, pub.Close())
}

func TestNew(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	_, isLog := New(nil, log).(*LogPublisher)
	assert.True(t, isLog)

	kafka := New([]string{"localhost:9092"}, log)
	_, isKafka := kafka.(*kafkaPublisher)
	assert.True(t, isKafka)
	assert.NoError(t, kafka.Close())
}
