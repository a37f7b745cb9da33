package order

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/config"
	"github.com/Additional-Code/bakery/internal/messaging"
	ordersvc "github.com/Additional-Code/bakery/internal/service/order"
	"github.com/Additional-Code/bakery/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/bakery/worker/order")

// Module registers the order audit handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewAuditHandlers,
			fx.ResultTags(`group:"worker.handlers,flatten"`),
		),
	),
)

// NewAuditHandlers returns one registration per order event type. Each writes
// a structured audit line for the event it receives.
func NewAuditHandlers(logger *zap.Logger, cfg config.Config) []worker.HandlerRegistration {
	topic := cfg.Messaging.Kafka.Topic
	types := []string{ordersvc.EventCreated, ordersvc.EventUpdated, ordersvc.EventDeleted}

	regs := make([]worker.HandlerRegistration, 0, len(types))
	for _, eventType := range types {
		regs = append(regs, worker.HandlerRegistration{
			Topic:     topic,
			EventType: eventType,
			Handler:   auditHandler(logger, eventType),
		})
	}
	return regs
}

func auditHandler(logger *zap.Logger, eventType string) messaging.Handler {
	return func(ctx context.Context, msg messaging.Message) error {
		_, span := workerTracer.Start(ctx, "worker.orders.audit", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.String("order.event", eventType),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.String("type", eventType), zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		if event.Type != eventType {
			err := fmt.Errorf("event type %q does not match header %q", event.Type, eventType)
			span.RecordError(err)
			span.SetStatus(codes.Error, "type mismatch")
			return err
		}

		logger.Info("order event",
			zap.String("type", event.Type),
			zap.Int64("id", event.ID),
			zap.String("order_id", event.OrderID),
			zap.String("customer_name", event.CustomerName),
			zap.String("item", event.Item),
			zap.Int("quantity", event.Quantity),
			zap.String("status", event.Status),
			zap.Time("occurred_at", event.OccurredAt),
		)

		return nil
	}
}
