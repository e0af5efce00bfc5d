package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/sqlbridge/internal/database"
	"github.com/koustreak/sqlbridge/internal/errs"
)

func TestOpenExecutor_SQLite(t *testing.T) {
	exec, err := openExecutor(context.Background(), database.DefaultConfig())
	require.NoError(t, err)
	defer exec.Close()
	assert.Equal(t, database.DriverSQLite, exec.Driver())
}

func TestOpenExecutor_UnknownDriver(t *testing.T) {
	_, err := openExecutor(context.Background(), &database.Config{Driver: "oracle", DSN: "x"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, ":memory:", redact(database.DefaultConfig()))
	assert.Equal(t, "postgres://…", redact(&database.Config{Driver: database.DriverPostgres, DSN: "postgres://u:secret@h/db"}))
}

func TestLogOutput(t *testing.T) {
	out, closeFn, err := logOutput("")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, out)
	closeFn()

	path := filepath.Join(t.TempDir(), "logs", "sqlbridge.log")
	out, closeFn, err = logOutput(path)
	require.NoError(t, err)
	_, err = out.Write([]byte("line\n"))
	require.NoError(t, err)
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
