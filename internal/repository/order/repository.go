package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bakery/internal/database"
	"github.com/Additional-Code/bakery/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/bakery/repository/order")

var (
	// ErrNotFound is returned when no order has the requested id.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrderID is returned when the storage engine rejects an insert
	// because another row already holds the same order_id.
	ErrDuplicateOrderID = errors.New("order_id already exists")
)

// Patch lists the editable columns of an order; nil fields are left untouched.
type Patch struct {
	CustomerName  *string
	ContactNumber *string
	Item          *string
	Quantity      *int
	OrderDate     *string
	Status        *entity.Status
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.CustomerName == nil && p.ContactNumber == nil && p.Item == nil &&
		p.Quantity == nil && p.OrderDate == nil && p.Status == nil
}

// Store is the persistence contract for orders.
type Store interface {
	List(ctx context.Context) ([]entity.Order, error)
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, id int64, patch Patch, updatedAt time.Time) (*entity.Order, error)
	Delete(ctx context.Context, id int64) (*entity.Order, error)
}

// Repository implements Store on top of bun.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

var _ Store = (*Repository)(nil)

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// List returns every order, most recent order date first, then most recently created.
func (r *Repository) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	orders := make([]entity.Order, 0)
	err := r.reader.NewSelect().
		Model(&orders).
		OrderExpr("order_date DESC").
		OrderExpr("created_at DESC").
		OrderExpr("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, failSpan(span, "select failed", err)
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := selectByID(ctx, r.reader, id)
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if err != nil {
		return nil, failSpan(span, "select failed", err)
	}
	return order, nil
}

// Create inserts order in a single statement. Uniqueness of order_id is left to
// the UNIQUE index so concurrent inserts of the same id cannot both succeed.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.order_id", order.OrderID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if database.IsUniqueViolation(err) {
		span.SetStatus(codes.Error, "duplicate order_id")
		return ErrDuplicateOrderID
	}
	if err != nil {
		return failSpan(span, "insert failed", err)
	}
	return nil
}

// Update applies patch to the row identified by id and returns the stored result.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch, updatedAt time.Time) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	var updated *entity.Order
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*entity.Order)(nil)).
			Set("updated_at = ?", updatedAt).
			Where("id = ?", id)
		if patch.CustomerName != nil {
			q = q.Set("customer_name = ?", *patch.CustomerName)
		}
		if patch.ContactNumber != nil {
			q = q.Set("contact_number = ?", *patch.ContactNumber)
		}
		if patch.Item != nil {
			q = q.Set("item = ?", *patch.Item)
		}
		if patch.Quantity != nil {
			q = q.Set("quantity = ?", *patch.Quantity)
		}
		if patch.OrderDate != nil {
			q = q.Set("order_date = ?", *patch.OrderDate)
		}
		if patch.Status != nil {
			q = q.Set("status = ?", string(*patch.Status))
		}

		if _, err := q.Exec(ctx); err != nil {
			return err
		}

		// RowsAffected is zero on MySQL for no-op updates; existence is checked by re-reading.
		order, err := selectByID(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = order
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if err != nil {
		return nil, failSpan(span, "update failed", err)
	}
	return updated, nil
}

// Delete removes the row identified by id and returns its prior values.
// The read and the delete share one transaction.
func (r *Repository) Delete(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	var deleted *entity.Order
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		order, err := selectByID(ctx, tx, id)
		if err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*entity.Order)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		deleted = order
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if err != nil {
		return nil, failSpan(span, "delete failed", err)
	}
	return deleted, nil
}

func selectByID(ctx context.Context, db bun.IDB, id int64) (*entity.Order, error) {
	order := new(entity.Order)
	err := db.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func failSpan(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return fmt.Errorf("%s: %w", msg, err)
}
