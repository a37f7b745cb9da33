package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/database"
	"github.com/Additional-Code/bakery/internal/migration"
	"github.com/Additional-Code/bakery/internal/testutil"
)

func tableExists(t *testing.T, conns *database.Connections) bool {
	t.Helper()

	var n int
	err := conns.Reader.NewSelect().
		TableExpr("sqlite_master").
		ColumnExpr("COUNT(*)").
		Where("type = 'table' AND name = 'orders'").
		Scan(context.Background(), &n)
	require.NoError(t, err)
	return n == 1
}

func TestMigratorUpDown(t *testing.T) {
	ctx := context.Background()
	cfg := testutil.SQLiteConfig(t)
	conns, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Close() })

	mig, err := migration.New(cfg, conns, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, mig.Up(ctx))
	assert.True(t, tableExists(t, conns))

	version, err := mig.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)

	// second run is a no-op
	require.NoError(t, mig.Up(ctx))

	require.NoError(t, mig.Down(ctx, 0, true))
	assert.False(t, tableExists(t, conns))

	require.NoError(t, mig.Up(ctx))
	assert.True(t, tableExists(t, conns))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := testutil.SQLiteConfig(t)
	conns, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Close() })

	cfg.Database.Driver = "oracle"
	_, err = migration.New(cfg, conns, zap.NewNop())
	assert.Error(t, err)
}
