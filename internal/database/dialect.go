package database

import "github.com/koustreak/sqlbridge/internal/errs"

// Dialect is what an engine package contributes to the shared executor.
type Dialect struct {
	// Driver is the engine this dialect speaks for.
	Driver Driver

	// DriverName is the database/sql registration name (e.g. "sqlite3", "pgx").
	DriverName string

	// MapError translates a native driver error into *errs.Error.
	// Errors it does not recognise must map to errs.ErrKindQueryFailed.
	MapError func(err error, msg string) *errs.Error

	// BytesAsText reports whether []byte cells of a declared column type
	// carry text. Nil for engines that only return []byte for blobs.
	BytesAsText func(dbType string) bool
}

func (d Dialect) mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	if d.MapError == nil {
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}
	return d.MapError(err, msg)
}

// prepareError labels a prepare failure. Connection-level and timeout kinds
// from the engine are kept; everything else is a rejected statement.
func (d Dialect) prepareError(err error, msg string) *errs.Error {
	e := d.mapError(err, msg)
	switch e.Kind {
	case errs.ErrKindConnectionFailed, errs.ErrKindTimeout:
		return e
	}
	e.Kind = errs.ErrKindPrepareFailed
	return e
}
