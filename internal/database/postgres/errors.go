package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/sqlbridge/internal/errs"
)

// PostgreSQL SQLSTATE classes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnection    = "08"
	pgClassInsufficient  = "53" // insufficient resources
	pgClassOperator      = "57" // operator intervention (includes query_canceled)
	pgQueryCanceled      = "57014"
	pgInvalidAuthSpec    = "28000"
	pgInvalidPassword    = "28P01"
	pgInvalidCatalogName = "3D000"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classifySQLState(pgErr.Code), fmt.Sprintf("%s (SQLSTATE %s)", msg, pgErr.Code), err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

// classifySQLState maps a SQLSTATE code to ErrKind.
func classifySQLState(code string) errs.ErrKind {
	switch code {
	case pgQueryCanceled:
		return errs.ErrKindTimeout
	case pgInvalidAuthSpec, pgInvalidPassword, pgInvalidCatalogName:
		return errs.ErrKindConnectionFailed
	}
	if len(code) >= 2 {
		switch code[:2] {
		case pgClassConnection, pgClassInsufficient, pgClassOperator:
			return errs.ErrKindConnectionFailed
		}
	}
	return errs.ErrKindQueryFailed
}
