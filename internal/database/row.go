package database

import (
	"database/sql"

	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/value"
)

// Column describes one output column of a prepared statement.
type Column struct {
	Name string

	// DatabaseType is the engine's declared type name, upper-cased
	// (e.g. "TEXT", "VARCHAR"). Empty for expressions without a declared type.
	DatabaseType string
}

// ColumnsOf reads the output columns of rows. It is called once per
// statement, before the first row is fetched.
func ColumnsOf(rows *sql.Rows) ([]Column, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i].Name = name
	}

	// Type names are a hint only; a driver that cannot report them still
	// yields usable columns.
	types, err := rows.ColumnTypes()
	if err == nil && len(types) == len(cols) {
		for i, ct := range types {
			cols[i].DatabaseType = ct.DatabaseTypeName()
		}
	}
	return cols, nil
}

// ColumnNames returns the names of cols in order, duplicates included.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Materialize builds one row object from the scanned cells, keyed by column
// name. When two columns share a name the later cell wins.
//
// bytesAsText reports whether a []byte cell of the given declared type is
// text rather than a blob; nil means "always a blob".
func Materialize(cells []any, cols []Column, bytesAsText func(dbType string) bool) map[string]any {
	row := make(map[string]any, len(cols))
	for i, col := range cols {
		var cell any
		if i < len(cells) {
			cell = cells[i]
		}
		if b, ok := cell.([]byte); ok && bytesAsText != nil && bytesAsText(col.DatabaseType) {
			row[col.Name] = value.Text(b)
			continue
		}
		row[col.Name] = value.FromCell(cell)
	}
	return row
}
