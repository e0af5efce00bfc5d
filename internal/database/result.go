package database

// ResultSet is the eagerly materialized output of a query.
// Columns keep the statement's declared order, duplicates included; rows keep
// cursor order. Both are non-nil.
type ResultSet struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// ExecResult is the outcome of a single mutating statement.
type ExecResult struct {
	RowsAffected int64 `json:"rowcount"`

	// LastInsertID is the engine's most recent generated row id on the
	// connection. It is stale for statements that did not insert, and 0 for
	// engines that cannot report one.
	LastInsertID int64 `json:"lastrowid"`
}

// BatchResult is the outcome of a batch or script.
type BatchResult struct {
	RowsAffected int64 `json:"rowcount"`
}
