package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/Additional-Code/bakery/internal/database"
	"github.com/Additional-Code/bakery/internal/entity"
	repo "github.com/Additional-Code/bakery/internal/repository/order"
	"github.com/Additional-Code/bakery/internal/testutil"
)

var baseTime = time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC)

func newOrder(orderID, date string, createdAt time.Time) *entity.Order {
	return &entity.Order{
		OrderID:       orderID,
		CustomerName:  "Emma Johnson",
		ContactNumber: "123-456-7891",
		Item:          "Bread",
		Quantity:      5,
		OrderDate:     date,
		Status:        entity.StatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func newRepository(t *testing.T) *repo.Repository {
	t.Helper()
	return repo.NewRepository(testutil.NewSQLite(t))
}

func TestCreateAssignsIDAndPersists(t *testing.T) {
	ctx := context.Background()
	r := newRepository(t)

	order := newOrder("ORD100", "2024-01-16", baseTime)
	require.NoError(t, r.Create(ctx, order))
	assert.NotZero(t, order.ID)

	got, err := r.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD100", got.OrderID)
	assert.Equal(t, "Emma Johnson", got.CustomerName)
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.True(t, baseTime.Equal(got.CreatedAt))
}

func TestCreateDuplicateOrderID(t *testing.T) {
	ctx := context.Background()
	r := newRepository(t)

	require.NoError(t, r.Create(ctx, newOrder("ORD100", "2024-01-16", baseTime)))
	err := r.Create(ctx, newOrder("ORD100", "2024-01-17", baseTime))
	assert.ErrorIs(t, err, repo.ErrDuplicateOrderID)

	orders, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCreateConcurrentDuplicateOrderID(t *testing.T) {
	ctx := context.Background()
	r := newRepository(t)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Create(ctx, newOrder("ORD-RACE", "2024-01-16", baseTime))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, repo.ErrDuplicateOrderID):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	orders, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()
	r := newRepository(t)

	require.NoError(t, r.Create(ctx, newOrder("A", "2024-01-15", baseTime)))
	require.NoError(t, r.Create(ctx, newOrder("B", "2024-01-16", baseTime)))
	require.NoError(t, r.Create(ctx, newOrder("C", "2024-01-16", baseTime.Add(time.Minute))))
	require.NoError(t, r.Create(ctx, newOrder("D", "2023-12-31", baseTime.Add(time.Hour))))

	orders, err := r.List(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.OrderID)
	}
	assert.Equal(t, []string{"C", "B", "A", "D"}, ids)
}

func TestListEmpty(t *testing.T) {
	orders, err := newRepository(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestUpdatePatchesFields(t *testing.T) {
	ctx := context.Background()
	r := newRepository(t)

	order := newOrder("ORD100", "2024-01-16", baseTime)
	require.NoError(t, r.Create(ctx, order))

	status := entity.StatusCompleted
	quantity := 7
	later := baseTime.Add(2 * time.Hour)
	updated, err := r.Update(ctx, order.ID, repo.Patch{Status: &status, Quantity: &quantity}, later)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCompleted, updated.Status)
	assert.Equal(t, 7, updated.Quantity)
	assert.Equal(t, "Bread", updated.Item)
	assert.Equal(t, "ORD100", updated.OrderID)
	assert.True(t, later.Equal(updated.UpdatedAt))
	assert.True(t, baseTime.Equal(updated.CreatedAt))
}

func TestUpdateUnknownID(t *testing.T) {
	ctx := context.Background()
	r := newRepository(t)

	status := entity.StatusCompleted
	_, err := r.Update(ctx, 404, repo.Patch{Status: &status}, baseTime)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDeleteReturnsPriorValues(t *testing.T) {
	ctx := context.Background()
	r := newRepository(t)

	order := newOrder("ORD100", "2024-01-16", baseTime)
	require.NoError(t, r.Create(ctx, order))

	deleted, err := r.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, deleted.ID)
	assert.Equal(t, "ORD100", deleted.OrderID)
	assert.Equal(t, "Emma Johnson", deleted.CustomerName)

	_, err = r.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.Delete(ctx, order.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func newMockRepository(t *testing.T) (*repo.Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	return repo.NewRepository(&database.Connections{Driver: "sqlite", Writer: db, Reader: db}), mock
}

func TestStorageFailuresAreNotClassified(t *testing.T) {
	ctx := context.Background()
	r, mock := newMockRepository(t)
	diskErr := errors.New("disk I/O error")

	mock.ExpectQuery("SELECT").WillReturnError(diskErr)
	_, err := r.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr)
	assert.NotErrorIs(t, err, repo.ErrNotFound)

	mock.ExpectQuery("SELECT").WillReturnError(diskErr)
	_, err = r.GetByID(ctx, 1)
	assert.ErrorIs(t, err, diskErr)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnError(diskErr)
	mock.ExpectRollback()
	_, err = r.Delete(ctx, 1)
	assert.ErrorIs(t, err, diskErr)
	assert.NotErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, repo.Patch{}.Empty())
	item := "Croissant"
	assert.False(t, repo.Patch{Item: &item}.Empty())
}
