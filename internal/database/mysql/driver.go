// Package mysql provides the MySQL engine for the statement executor,
// backed by github.com/go-sql-driver/mysql.
//
// The DSN uses the driver's own format ("user:pass@tcp(host:3306)/db");
// a "mysql://" scheme is stripped by database.ParseTarget before it gets here.
package mysql

import (
	"context"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/sqlbridge/internal/database"
	"github.com/koustreak/sqlbridge/internal/errs"
)

const driverName = "mysql"

// Dialect is the MySQL contribution to the executor.
var Dialect = database.Dialect{
	Driver:      database.DriverMySQL,
	DriverName:  driverName,
	MapError:    mapError,
	BytesAsText: bytesAsText,
}

// New normalizes cfg.DSN, connects, and returns the executor.
func New(ctx context.Context, cfg *database.Config) (*database.Executor, error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	c := *cfg
	c.DSN = dsn
	return database.Open(ctx, &c, Dialect)
}

// normalizeDSN turns on the options the executor depends on: multiple
// statements per call for scripts, and time.Time for temporal columns.
func normalizeDSN(dsn string) (string, error) {
	mc, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}
	mc.MultiStatements = true
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}

// textTypes are the declared types whose values the text protocol delivers
// as []byte even though they are not binary.
var textTypes = map[string]struct{}{
	"CHAR":       {},
	"VARCHAR":    {},
	"TEXT":       {},
	"TINYTEXT":   {},
	"MEDIUMTEXT": {},
	"LONGTEXT":   {},
	"ENUM":       {},
	"SET":        {},
	"JSON":       {},
	"DECIMAL":    {},
	"DATE":       {},
	"TIME":       {},
	"DATETIME":   {},
	"TIMESTAMP":  {},
	"YEAR":       {},
}

func bytesAsText(dbType string) bool {
	_, ok := textTypes[strings.ToUpper(dbType)]
	return ok
}
