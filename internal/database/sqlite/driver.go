// Package sqlite provides the SQLite engine for the statement executor,
// backed by github.com/mattn/go-sqlite3.
//
// Usage:
//
//	exec, err := sqlite.New(ctx, database.DefaultConfig()) // ":memory:"
//	if err != nil { ... }
//	defer exec.Close()
package sqlite

import (
	"context"
	"database/sql"

	"github.com/koustreak/sqlbridge/internal/database"
)

// driverName is the registration of the go-sqlite3 wrapper in conn.go.
const driverName = "sqlbridge_sqlite3"

func init() {
	sql.Register(driverName, &storageDriver{})
}

// Dialect is the SQLite contribution to the executor. Cells come back in
// their storage class (INTEGER as int64, TEXT as string, BLOB as []byte), so
// no []byte cell is ever treated as text.
var Dialect = database.Dialect{
	Driver:     database.DriverSQLite,
	DriverName: driverName,
	MapError:   mapError,
}

// New opens the SQLite database named by cfg.DSN (a path, a "file:" URI or
// ":memory:") on a single connection and returns its executor.
func New(ctx context.Context, cfg *database.Config) (*database.Executor, error) {
	if cfg == nil {
		cfg = database.DefaultConfig()
	}
	return database.Open(ctx, cfg, Dialect)
}
