package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bakery/internal/config"
)

func TestOpenSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "bakery.db")
	conns, err := Open(config.Database{Driver: "sqlite", WriterDSN: dsn, ReaderDSN: dsn, MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Close() })

	assert.Same(t, conns.Writer, conns.Reader)
	require.NoError(t, conns.Ping(context.Background()))

	var one int
	require.NoError(t, conns.Reader.NewSelect().ColumnExpr("1").Scan(context.Background(), &one))
	assert.Equal(t, 1, one)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Database{Driver: "oracle", WriterDSN: "x"})
	assert.Error(t, err)

	_, err = Open(config.Database{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("connection refused"), false},
		{"mysql duplicate", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), true},
		{"mysql other", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, false},
		{"sqlite message", errors.New("constraint failed: UNIQUE constraint failed: orders.order_id (2067)"), true},
		{"sqlite code", sqliteErr{code: 2067}, true},
		{"sqlite check", sqliteErr{code: 275}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsUniqueViolation(tt.err), tt.name)
	}
}

type sqliteErr struct{ code int }

func (e sqliteErr) Error() string { return fmt.Sprintf("sqlite error %d", e.code) }
func (e sqliteErr) Code() int     { return e.code }
