// Package database owns the single shared database connection and runs
// statements against it.
//
// Engine packages (sqlite, postgres, mysql) contribute a Dialect and open the
// Executor; everything above this package talks only to *Executor.
//
// Usage:
//
//	exec, err := sqlite.New(ctx, database.DefaultConfig())
//	if err != nil { ... }
//	defer exec.Close()
//
//	rs, err := exec.RunQuery(ctx, "SELECT id, name FROM t WHERE id > ?", []any{json.Number("1")})
package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/logger"
	"github.com/koustreak/sqlbridge/internal/value"
)

// Executor runs statements on one connection. Every operation holds the
// mutex from prepare to the last fetched row, so statements never interleave.
//
// Engine calls run under a context stripped of cancellation: once a statement
// reaches the engine it runs to completion.
type Executor struct {
	mu      sync.Mutex
	db      *sqlx.DB
	conn    *sqlx.Conn
	dialect Dialect
}

// Open opens cfg.DSN with the dialect's driver, checks out the single
// connection and pings it.
func Open(ctx context.Context, cfg *Config, d Dialect) (*Executor, error) {
	db, err := sqlx.Open(d.DriverName, cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	// An in-memory SQLite database lives and dies with its connection, so
	// the pool must never open a second one or recycle the first.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		_ = db.Close()
		return nil, connectError(d, err, "failed to open connection")
	}

	e := &Executor{db: db, conn: conn, dialect: d}
	if err := e.Ping(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}
	return e, nil
}

func connectError(d Dialect, err error, msg string) *errs.Error {
	e := d.mapError(err, msg)
	if e.Kind != errs.ErrKindTimeout {
		e.Kind = errs.ErrKindConnectionFailed
	}
	return e
}

// Driver reports which engine the executor talks to.
func (e *Executor) Driver() Driver {
	return e.dialect.Driver
}

// Ping verifies the connection is still usable.
func (e *Executor) Ping(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.conn.PingContext(ctx); err != nil {
		return connectError(e.dialect, err, "ping failed")
	}
	return nil
}

// Close releases the connection. Call when the application shuts down.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	connErr := e.conn.Close()
	if err := e.db.Close(); err != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed, "failed to close database", err)
	}
	if connErr != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed, "failed to close connection", connErr)
	}
	return nil
}

// RunQuery prepares query, binds params in order and reads every row.
func (e *Executor) RunQuery(ctx context.Context, query string, params []any) (*ResultSet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "query must not be empty")
	}

	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	stmt, err := e.conn.PreparexContext(ctx, query)
	if err != nil {
		return nil, e.dialect.prepareError(err, "failed to prepare query")
	}
	defer stmt.Close()

	rows, err := stmt.QueryxContext(ctx, value.ToParameters(params)...)
	if err != nil {
		return nil, e.dialect.mapError(err, "failed to execute query")
	}
	defer rows.Close()

	cols, err := ColumnsOf(rows.Rows)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{
		Columns: ColumnNames(cols),
		Rows:    make([]map[string]any, 0),
	}
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, e.dialect.mapError(err, "failed to scan row")
		}
		rs.Rows = append(rs.Rows, Materialize(cells, cols, e.dialect.BytesAsText))
	}
	if err := rows.Err(); err != nil {
		return nil, e.dialect.mapError(err, "error during row iteration")
	}

	logger.FromContext(ctx).DebugWith("query finished", map[string]interface{}{
		"columns":     len(rs.Columns),
		"rows":        len(rs.Rows),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return rs, nil
}

// RunStatement prepares statement, binds params and executes it once.
func (e *Executor) RunStatement(ctx context.Context, statement string, params []any) (*ExecResult, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "statement must not be empty")
	}

	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	stmt, err := e.conn.PreparexContext(ctx, statement)
	if err != nil {
		return nil, e.dialect.prepareError(err, "failed to prepare statement")
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, value.ToParameters(params)...)
	if err != nil {
		return nil, e.dialect.mapError(err, "failed to execute statement")
	}

	out := &ExecResult{}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	// PostgreSQL has no connection-wide last insert id; report 0.
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}

	logger.FromContext(ctx).DebugWith("statement finished", map[string]interface{}{
		"rows_affected":  out.RowsAffected,
		"last_insert_id": out.LastInsertID,
		"duration_ms":    time.Since(start).Milliseconds(),
	})
	return out, nil
}

// RunMany prepares statement once and executes it for each parameter set,
// summing the affected rows. It stops at the first failing set; sets that
// already ran stay applied because no transaction wraps the batch.
func (e *Executor) RunMany(ctx context.Context, statement string, paramSets [][]any) (*BatchResult, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "statement must not be empty")
	}

	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	stmt, err := e.conn.PreparexContext(ctx, statement)
	if err != nil {
		return nil, e.dialect.prepareError(err, "failed to prepare statement")
	}
	defer stmt.Close()

	out := &BatchResult{}
	for i, params := range paramSets {
		res, err := stmt.ExecContext(ctx, value.ToParameters(params)...)
		if err != nil {
			return nil, e.dialect.mapError(err, fmt.Sprintf("failed to execute statement for parameter set %d", i))
		}
		if n, err := res.RowsAffected(); err == nil {
			out.RowsAffected += n
		}
	}

	logger.FromContext(ctx).DebugWith("batch finished", map[string]interface{}{
		"sets":          len(paramSets),
		"rows_affected": out.RowsAffected,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return out, nil
}

// RunScript executes a multi-statement script in one engine call.
//
// The engine does not report a total row count for a script, so the result
// is always RowsAffected: 0.
func (e *Executor) RunScript(ctx context.Context, script string) (*BatchResult, error) {
	if strings.TrimSpace(script) == "" {
		return &BatchResult{}, nil
	}

	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	if _, err := e.conn.ExecContext(ctx, script); err != nil {
		return nil, e.dialect.mapError(err, "failed to execute script")
	}

	logger.FromContext(ctx).DebugWith("script finished", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return &BatchResult{}, nil
}
