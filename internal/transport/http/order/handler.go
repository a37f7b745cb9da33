package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bakery/internal/dto"
	"github.com/Additional-Code/bakery/internal/entity"
	"github.com/Additional-Code/bakery/internal/presentation/http/response"
	service "github.com/Additional-Code/bakery/internal/service/order"
	"github.com/Additional-Code/bakery/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bakery/transport/http/order")

const (
	msgCreated = "Order created successfully"
	msgUpdated = "Order updated successfully"
	msgDeleted = "Order deleted successfully"
)

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the order routes under /api/orders.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/orders")
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toDTO(&orders[i]))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid JSON body", errorbank.WithCause(err))).Build()
	}

	in := service.CreateInput{
		OrderID:       payload.OrderID,
		CustomerName:  payload.CustomerName,
		ContactNumber: payload.ContactNumber,
		Item:          payload.Item,
		Quantity:      payload.Quantity,
		OrderDate:     payload.OrderDate,
	}
	if payload.Status != nil {
		in.Status = *payload.Status
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	span.SetAttributes(attribute.String("order.order_id", payload.OrderID))
	defer span.End()

	order, err := h.svc.Create(ctx, in)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).
		WithData(dto.CreateOrderResponse{Message: msgCreated, Order: toDTO(order)}).
		Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.UpdateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid JSON body", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Update(ctx, id, service.UpdateInput{
		CustomerName:  payload.CustomerName,
		ContactNumber: payload.ContactNumber,
		Item:          payload.Item,
		Quantity:      payload.Quantity,
		OrderDate:     payload.OrderDate,
		Status:        payload.Status,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.UpdateOrderResponse{Message: msgUpdated, Order: toDTO(order)}).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Delete(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.DeleteOrderResponse{Message: msgDeleted, DeletedOrder: toDTO(order)}).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithDetail("id", c.Param("id")))
	}
	return id, nil
}

func toDTO(order *entity.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:            order.ID,
		OrderID:       order.OrderID,
		CustomerName:  order.CustomerName,
		ContactNumber: order.ContactNumber,
		Item:          order.Item,
		Quantity:      order.Quantity,
		OrderDate:     order.OrderDate,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
