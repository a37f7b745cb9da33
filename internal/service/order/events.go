package order

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/entity"
	"github.com/Additional-Code/bakery/internal/messaging"
)

// Event types published on the order topic.
const (
	EventCreated = "order.created"
	EventUpdated = "order.updated"
	EventDeleted = "order.deleted"
)

// OrderEvent is emitted after every successful order mutation.
type OrderEvent struct {
	Type         string    `json:"type"`
	ID           int64     `json:"id"`
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Item         string    `json:"item"`
	Quantity     int       `json:"quantity"`
	OrderDate    string    `json:"order_date"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func newEvent(eventType string, order *entity.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:         eventType,
		ID:           order.ID,
		OrderID:      order.OrderID,
		CustomerName: order.CustomerName,
		Item:         order.Item,
		Quantity:     order.Quantity,
		OrderDate:    order.OrderDate,
		Status:       string(order.Status),
		OccurredAt:   at,
	}
}

// publish is best effort: the order is already committed, so failures are only logged.
func (s *Service) publish(ctx context.Context, eventType string, order *entity.Order) {
	if !s.events || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(newEvent(eventType, order, s.now()))
	if err != nil {
		s.logger.Error("marshal order event", zap.String("type", eventType), zap.Error(err))
		return
	}
	headers := map[string]string{messaging.HeaderEventType: eventType}
	if err := s.publisher.Publish(ctx, []byte(order.OrderID), payload, headers); err != nil {
		s.logger.Error("publish order event",
			zap.String("type", eventType),
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
	}
}
