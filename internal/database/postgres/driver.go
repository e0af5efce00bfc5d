// Package postgres provides the PostgreSQL engine for the statement
// executor, backed by pgx through its database/sql adapter.
//
// Placeholders follow PostgreSQL syntax ($1, $2, …). PostgreSQL has no
// connection-wide last insert id, so execute reports lastrowid 0; use
// RETURNING with the query operation instead.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // register "pgx" driver

	"github.com/koustreak/sqlbridge/internal/database"
	"github.com/koustreak/sqlbridge/internal/errs"
)

const driverName = "pgx"

// Dialect is the PostgreSQL contribution to the executor. pgx returns text
// as string and bytea as []byte.
var Dialect = database.Dialect{
	Driver:     database.DriverPostgres,
	DriverName: driverName,
	MapError:   mapError,
}

// New validates cfg.DSN, connects, and returns the executor.
func New(ctx context.Context, cfg *database.Config) (*database.Executor, error) {
	if _, err := pgx.ParseConfig(cfg.DSN); err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}
	return database.Open(ctx, cfg, Dialect)
}
