package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "cli.db") + "?_pragma=busy_timeout(5000)"
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_WRITER_DSN", dsn)
	t.Setenv("DB_READER_DSN", "")
	t.Setenv("OBS_ENABLE_METRICS", "false")
	t.Setenv("OBS_ENABLE_TRACING", "false")
	t.Setenv("OBS_LOG_LEVEL", "error")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateSeedAndStatus(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied (version 1)")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "3 inserted")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "0 inserted")

	out, err = run(t, "migrate", "down", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations rolled back")

	out, err = run(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 0")
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "migrate", "down", "--steps", "0")
	assert.Error(t, err)
}

func TestRootListsCommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"start", "migrate", "seed", "worker"})
}
