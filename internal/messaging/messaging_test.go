package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/config"
)

func TestNewClientDisabledIsNoop(t *testing.T) {
	var cfg config.Config
	cfg.Messaging.Kafka.Topic = "bakery.orders.events"

	client, err := NewClient(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "bakery.orders.events", client.Topic())
	assert.NoError(t, client.Publish(context.Background(), []byte("k"), []byte("v"), nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, client.Consume(ctx, nil), context.DeadlineExceeded)
}

func TestNewClientUnknownDriver(t *testing.T) {
	var cfg config.Config
	cfg.Messaging.Enabled = true
	cfg.Messaging.Driver = "nats"

	_, err := NewClient(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestFromKafkaCopiesHeaders(t *testing.T) {
	at := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	raw := kafka.Message{
		Topic:   "bakery.orders.events",
		Key:     []byte("ORD100"),
		Value:   []byte(`{"type":"order.created"}`),
		Offset:  42,
		Time:    at,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte("order.created")}},
	}

	msg := fromKafka(raw)
	raw.Key[0] = 'X'

	assert.Equal(t, "ORD100", string(msg.Key))
	assert.Equal(t, int64(42), msg.Offset)
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "order.created", msg.EventType())
}
