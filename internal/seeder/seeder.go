package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/config"
	"github.com/Additional-Code/bakery/internal/database"
	"github.com/Additional-Code/bakery/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// SeedOnEmpty loads the sample orders on start when DB_SEED_ON_EMPTY is set.
// It must be registered after migration.AutoMigrate.
var SeedOnEmpty = fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, s *Seeder) {
	if !cfg.Database.SeedOnEmpty {
		return
	}
	lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
		_, err := s.SeedIfEmpty(ctx)
		return err
	}})
})

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
	now    func() time.Time
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger, now: time.Now}
}

// Samples returns the demo orders loaded by Orders.
func Samples(at time.Time) []entity.Order {
	at = at.UTC().Truncate(time.Microsecond)
	sample := func(orderID, name, contact, item string, qty int, date string, status entity.Status) entity.Order {
		return entity.Order{
			OrderID:       orderID,
			CustomerName:  name,
			ContactNumber: contact,
			Item:          item,
			Quantity:      qty,
			OrderDate:     date,
			Status:        status,
			CreatedAt:     at,
			UpdatedAt:     at,
		}
	}
	return []entity.Order{
		sample("ORD001", "John Smith", "123-456-7890", "Cake", 1, "2024-01-15", entity.StatusCompleted),
		sample("ORD002", "Emma Johnson", "123-456-7891", "Bread", 2, "2024-01-16", entity.StatusPending),
		sample("ORD003", "Michael Brown", "123-456-7892", "Muffin", 12, "2024-01-16", entity.StatusPending),
	}
}

// Orders inserts the sample orders, skipping any whose order_id already exists.
// It returns the number of rows inserted.
func (s *Seeder) Orders(ctx context.Context) (int, error) {
	inserted := 0
	for _, sample := range Samples(s.now()) {
		order := sample
		res, err := s.db.NewInsert().Model(&order).Ignore().Returning("NULL").Exec(ctx)
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", order.OrderID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int("inserted", inserted))
	}
	return inserted, nil
}

// SeedIfEmpty runs Orders only when the orders table has no rows.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*entity.Order)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	if count > 0 {
		if s.logger != nil {
			s.logger.Debug("orders present; skipping seed", zap.Int("count", count))
		}
		return 0, nil
	}
	return s.Orders(ctx)
}
