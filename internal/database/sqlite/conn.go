package sqlite

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/mattn/go-sqlite3"
)

var errMultipleStatements = errors.New("text holds more than one statement; run multi-statement text with executescript")

// storageDriver is go-sqlite3 with two changes for prepared statements:
// the text must hold exactly one statement, and result cells keep their
// SQLite storage class instead of being converted by declared column type
// (go-sqlite3 turns BOOLEAN integers into bool and DATE/DATETIME/TIMESTAMP
// cells into time.Time, replacing unparsable text with the zero time).
type storageDriver struct {
	base sqlite3.SQLiteDriver
}

func (d *storageDriver) Open(dsn string) (driver.Conn, error) {
	c, err := d.base.Open(dsn)
	if err != nil {
		return nil, err
	}
	return &storageConn{SQLiteConn: c.(*sqlite3.SQLiteConn)}, nil
}

type storageConn struct {
	*sqlite3.SQLiteConn
}

func (c *storageConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *storageConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if !blank(statementTail(query)) {
		return nil, errMultipleStatements
	}
	st, err := c.SQLiteConn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &storageStmt{SQLiteStmt: st.(*sqlite3.SQLiteStmt)}, nil
}

// QueryContext sends unprepared queries through PrepareContext, so every
// result set passes through storageStmt.
func (c *storageConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return nil, driver.ErrSkip
}

type storageStmt struct {
	*sqlite3.SQLiteStmt
}

func (s *storageStmt) Query(args []driver.Value) (driver.Rows, error) {
	return keepStorageClass(s.SQLiteStmt.Query(args))
}

func (s *storageStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return keepStorageClass(s.SQLiteStmt.QueryContext(ctx, args))
}

// keepStorageClass blanks the declared types go-sqlite3 consults while
// fetching. DeclTypes returns the slice the rows read from.
func keepStorageClass(rows driver.Rows, err error) (driver.Rows, error) {
	if err != nil {
		return nil, err
	}
	if r, ok := rows.(*sqlite3.SQLiteRows); ok {
		declared := r.DeclTypes()
		for i := range declared {
			declared[i] = ""
		}
	}
	return rows, nil
}
