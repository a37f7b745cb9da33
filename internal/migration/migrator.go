package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/config"
	"github.com/Additional-Code/bakery/internal/database"
)

//go:embed sql
var migrationsFS embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Module provides the migrator to Fx.
var Module = fx.Provide(New)

// AutoMigrate applies pending migrations during start when DB_AUTO_MIGRATE is set.
var AutoMigrate = fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, mig *Migrator) {
	if !cfg.Database.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{OnStart: mig.Up})
})

// Migrator wraps goose operations against the writer connection.
type Migrator struct {
	db      *sql.DB
	dialect string
	logger  *zap.Logger
}

// New constructs a goose-backed migrator.
func New(cfg config.Config, conns *database.Connections, logger *zap.Logger) (*Migrator, error) {
	dialect, err := gooseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	return &Migrator{
		db:      conns.Writer.DB,
		dialect: dialect,
		logger:  logger,
	}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	err := m.run(func(dir string) error {
		return goose.UpContext(ctx, m.db, dir)
	})
	if err != nil {
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to apply")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	m.logger.Info("migrations applied", zap.String("dialect", m.dialect))
	return nil
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if steps <= 0 {
		steps = 1
	}

	err := m.run(func(dir string) error {
		if all {
			return goose.DownToContext(ctx, m.db, dir, 0)
		}
		for i := 0; i < steps; i++ {
			if err := goose.DownContext(ctx, m.db, dir); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to rollback")
			return nil
		}
		return fmt.Errorf("rollback migrations: %w", err)
	}

	if all {
		m.logger.Info("migrations rolled back", zap.String("mode", "all"))
	} else {
		m.logger.Info("migrations rolled back", zap.Int("steps", steps))
	}
	return nil
}

// Version reports the currently applied schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.run(func(string) error {
		v, err := goose.GetDBVersionContext(ctx, m.db)
		version = v
		return err
	})
	return version, err
}

func (m *Migrator) run(fn func(dir string) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{logger: m.logger})
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	return fn(migrationsDir(m.dialect))
}

func migrationsDir(dialect string) string {
	switch dialect {
	case "postgres":
		return "sql/postgres"
	case "mysql":
		return "sql/mysql"
	default:
		return "sql/sqlite"
	}
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "postgres", "pg":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported goose dialect for driver %s", driver)
	}
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) {
		return true
	}

	return strings.Contains(err.Error(), "no migrations")
}

type gooseLogger struct {
	logger *zap.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Sugar().Debugf(strings.TrimSpace(format), v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Sugar().Fatalf(strings.TrimSpace(format), v...)
}
