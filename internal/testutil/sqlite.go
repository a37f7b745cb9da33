// Package testutil holds helpers shared by package tests that need a real order store.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/config"
	"github.com/Additional-Code/bakery/internal/database"
	"github.com/Additional-Code/bakery/internal/migration"
)

// SQLiteConfig returns a config pointing at a fresh sqlite file under t.TempDir().
func SQLiteConfig(t testing.TB) config.Config {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "bakery.db") + "?_pragma=busy_timeout(5000)"
	return config.Config{
		Database: config.Database{
			Driver:       "sqlite",
			WriterDSN:    dsn,
			ReaderDSN:    dsn,
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
	}
}

// NewSQLite opens a migrated sqlite database that is closed when the test ends.
func NewSQLite(t testing.TB) *database.Connections {
	t.Helper()

	cfg := SQLiteConfig(t)
	conns, err := database.Open(cfg.Database)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conns.Close() })

	mig, err := migration.New(cfg, conns, zap.NewNop())
	if err != nil {
		t.Fatalf("build migrator: %v", err)
	}
	if err := mig.Up(context.Background()); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conns
}
