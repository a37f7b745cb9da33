package order

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/cache"
	"github.com/Additional-Code/bakery/internal/config"
	"github.com/Additional-Code/bakery/internal/entity"
	"github.com/Additional-Code/bakery/internal/messaging"
	repo "github.com/Additional-Code/bakery/internal/repository/order"
	"github.com/Additional-Code/bakery/pkg/errorbank"
	"github.com/Additional-Code/bakery/pkg/validation"
)

const (
	listCacheKey = "orders:list"
	// generated order ids are retried on the rare collision
	maxGeneratedIDAttempts = 3
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/bakery/service/order")
	serviceMeter  = otel.Meter("github.com/Additional-Code/bakery/service/order")
)

// Service owns the order rules: validation, defaults, timestamps and the
// mapping of storage outcomes onto errorbank kinds.
type Service struct {
	store      repo.Store
	cache      cache.Store
	cacheTTL   time.Duration
	logger     *zap.Logger
	publisher  messaging.Client
	events     bool
	validator  *validation.Validator
	now        func() time.Time
	newOrderID func() string
	counters   counters
}

type counters struct {
	created   metric.Int64Counter
	conflicts metric.Int64Counter
	deleted   metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     repo.Store
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client

	// Now overrides the wall clock; tests use it to control timestamps.
	Now func() time.Time `optional:"true"`
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	ttl := p.Config.Cache.DefaultTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Service{
		store:      p.Store,
		cache:      p.Cache,
		cacheTTL:   ttl,
		logger:     logger,
		publisher:  p.Publisher,
		events:     p.Config.Messaging.Enabled,
		validator:  validation.New(),
		now:        func() time.Time { return now().UTC().Truncate(time.Microsecond) },
		newOrderID: generateOrderID,
		counters:   newCounters(logger),
	}
}

func newCounters(logger *zap.Logger) counters {
	mustCounter := func(name, desc string) metric.Int64Counter {
		c, err := serviceMeter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			logger.Warn("register counter", zap.String("name", name), zap.Error(err))
		}
		return c
	}
	return counters{
		created:   mustCounter("orders_created_total", "Orders persisted"),
		conflicts: mustCounter("orders_conflicts_total", "Creates rejected for a duplicate order_id"),
		deleted:   mustCounter("orders_deleted_total", "Orders removed"),
	}
}

func generateOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// List returns every order, most recent order date first.
func (s *Service) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	if orders, err := s.listFromCache(ctx); err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return orders, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Error(err))
	}

	orders, err := s.store.List(ctx)
	if err != nil {
		return nil, s.internal(span, "failed to load orders", err)
	}

	if err := s.storeListInCache(ctx, orders); err != nil {
		s.logger.Warn("orders cache write failed", zap.Error(err))
	}
	return orders, nil
}

// Get retrieves a single order by its numeric id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errorbank.NotFound("order not found")
	}
	if err != nil {
		return nil, s.internal(span, "failed to load order", err)
	}
	return order, nil
}

// Create validates in, applies defaults and persists the order.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	in.normalize()
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	order := &entity.Order{
		OrderID:       in.OrderID,
		CustomerName:  in.CustomerName,
		ContactNumber: in.ContactNumber,
		Item:          in.Item,
		Quantity:      *in.Quantity,
		OrderDate:     in.OrderDate,
		Status:        entity.Status(in.Status),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.OrderDate == "" {
		order.OrderDate = now.Format(validation.DateLayout)
	}
	if order.Status == "" {
		order.Status = entity.StatusPending
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	generated := order.OrderID == ""
	attempts := 1
	if generated {
		attempts = maxGeneratedIDAttempts
	}

	var err error
	for i := 0; i < attempts; i++ {
		if generated {
			order.OrderID = s.newOrderID()
		}
		err = s.store.Create(ctx, order)
		if !errors.Is(err, repo.ErrDuplicateOrderID) {
			break
		}
	}
	span.SetAttributes(attribute.String("order.order_id", order.OrderID))

	switch {
	case errors.Is(err, repo.ErrDuplicateOrderID):
		s.add(ctx, s.counters.conflicts)
		span.SetStatus(codes.Error, "duplicate order_id")
		return nil, errorbank.Conflict("order_id already exists", errorbank.WithDetail("order_id", order.OrderID))
	case err != nil:
		return nil, s.internal(span, "failed to create order", err)
	}

	s.add(ctx, s.counters.created)
	s.invalidateList(ctx)
	s.publish(ctx, EventCreated, order)
	return order, nil
}

// Update applies the editable fields in in to order id and refreshes updated_at.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*entity.Order, error) {
	in.normalize()
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	patch := in.patch()
	if patch.Empty() {
		return nil, errorbank.BadRequest("no fields to update")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.store.Update(ctx, id, patch, s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errorbank.NotFound("order not found")
	}
	if err != nil {
		return nil, s.internal(span, "failed to update order", err)
	}

	s.invalidateList(ctx)
	s.publish(ctx, EventUpdated, order)
	return order, nil
}

// Delete removes order id and returns the values it held.
func (s *Service) Delete(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.store.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errorbank.NotFound("order not found")
	}
	if err != nil {
		return nil, s.internal(span, "failed to delete order", err)
	}

	s.add(ctx, s.counters.deleted)
	s.invalidateList(ctx)
	s.publish(ctx, EventDeleted, order)
	return order, nil
}

// internal logs the storage failure and hides it behind a generic message.
func (s *Service) internal(span trace.Span, message string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, message)
	s.logger.Error(message, zap.Error(err))
	return errorbank.Internal(message, errorbank.WithCause(err))
}

func (s *Service) add(ctx context.Context, c metric.Int64Counter) {
	if c != nil {
		c.Add(ctx, 1)
	}
}

func (s *Service) listFromCache(ctx context.Context) ([]entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	raw, err := s.cache.Get(ctx, listCacheKey)
	if err != nil {
		return nil, err
	}
	var orders []entity.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) storeListInCache(ctx context.Context, orders []entity.Order) error {
	if s.cache == nil {
		return nil
	}
	raw, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, listCacheKey, raw, s.cacheTTL)
}

func (s *Service) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		s.logger.Warn("orders cache invalidation failed", zap.Error(err))
	}
}
