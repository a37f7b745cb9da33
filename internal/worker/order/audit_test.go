package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/bakery/internal/config"
	"github.com/Additional-Code/bakery/internal/messaging"
	ordersvc "github.com/Additional-Code/bakery/internal/service/order"
	"github.com/Additional-Code/bakery/internal/worker"
)

const topic = "bakery.orders.events"

func newEngine(logger *zap.Logger) *worker.Engine {
	var cfg config.Config
	cfg.Messaging.Kafka.Topic = topic

	return worker.NewEngine(worker.Params{
		Client:        messaging.Noop{TopicName: topic},
		Logger:        logger,
		Config:        cfg,
		Registrations: NewAuditHandlers(logger, cfg),
	})
}

func eventMessage(t *testing.T, eventType string) messaging.Message {
	t.Helper()

	payload, err := json.Marshal(ordersvc.OrderEvent{
		Type:       eventType,
		ID:         7,
		OrderID:    "ORD100",
		Item:       "Cake",
		Quantity:   2,
		Status:     "Pending",
		OccurredAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return messaging.Message{
		Topic:   topic,
		Key:     []byte("ORD100"),
		Value:   payload,
		Headers: map[string]string{messaging.HeaderEventType: eventType},
	}
}

func TestAuditHandlersLogEachEventType(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	engine := newEngine(zap.New(core))

	for _, eventType := range []string{ordersvc.EventCreated, ordersvc.EventUpdated, ordersvc.EventDeleted} {
		require.NoError(t, engine.Dispatch(context.Background(), eventMessage(t, eventType)))
	}

	entries := logs.FilterMessage("order event").All()
	require.Len(t, entries, 3)
	assert.Equal(t, ordersvc.EventCreated, entries[0].ContextMap()["type"])
	assert.Equal(t, "ORD100", entries[2].ContextMap()["order_id"])
}

func TestAuditHandlerRejectsBadPayload(t *testing.T) {
	engine := newEngine(zap.NewNop())

	msg := eventMessage(t, ordersvc.EventCreated)
	msg.Value = []byte("{not json")
	assert.Error(t, engine.Dispatch(context.Background(), msg))

	msg = eventMessage(t, ordersvc.EventCreated)
	msg.Headers[messaging.HeaderEventType] = ordersvc.EventDeleted
	assert.Error(t, engine.Dispatch(context.Background(), msg))
}

func TestUnroutedMessagesAreDropped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	engine := newEngine(zap.New(core))

	msg := eventMessage(t, "order.archived")
	require.NoError(t, engine.Dispatch(context.Background(), msg))
	assert.Len(t, logs.FilterMessage("no handler for message").All(), 1)
}
