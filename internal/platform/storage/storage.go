// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

/*
Package storage exposes a thin, backend-neutral query adapter over the two
supported SQL engines: an embedded SQLite database for local development and
PostgreSQL for deployed environments.

Callers prepare a statement with a single SQL string using `?` placeholders,
bind positional values, and execute through one of three terminals:

  - First: at most one row, nil when the result set is empty
  - All: every row, always a non-nil slice
  - Run: mutations, returning affected-row and last-insert metadata

Rows are returned as column-name maps with typed accessors so that entity
stores never touch driver-specific scan types. Backend selection happens once
in [Open]; everything above this package is engine-agnostic.
*/
package storage

import (
	"context"
	"fmt"
	"time"
)

// # Adapter Contract

// DB is the backend-neutral database handle shared by all entity stores.
type DB interface {
	// Prepare returns a statement for the given SQL text. Placeholders are
	// always written as `?`; the PostgreSQL backend rewrites them to $n.
	Prepare(sql string) Statement

	// Ping verifies connectivity to the underlying engine.
	Ping(ctx context.Context) error

	// Backend reports which engine this handle talks to.
	Backend() Backend

	// Close releases the underlying connection resources.
	Close() error
}

// Statement is a prepared query with zero or more bound positional values.
type Statement interface {
	// Bind attaches positional values matching the `?` placeholders in order.
	Bind(args ...any) Statement

	// First executes the query and returns at most one row. A query that
	// matches nothing returns (nil, nil), not an error.
	First(ctx context.Context) (Row, error)

	// All executes the query and returns every matching row. The returned
	// slice is never nil, even for an empty result set.
	All(ctx context.Context) ([]Row, error)

	// Run executes a mutation and reports its outcome metadata.
	Run(ctx context.Context) (Result, error)
}

// Backend identifies the SQL engine behind a [DB] handle.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Result describes the outcome of a mutation statement.
type Result struct {
	Success bool
	Meta    Meta
}

// Meta carries engine-reported mutation metadata.
type Meta struct {
	// Changes is the number of rows affected by the statement.
	Changes int64

	// LastInsertID is the rowid of the most recent insert. Only the SQLite
	// backend populates it; PostgreSQL reports zero.
	LastInsertID int64
}

// # Row Access

// Row is a single result row keyed by column name.
type Row map[string]any

// String returns the named column as a string, or "" when absent or NULL.
func (r Row) String(column string) string {
	s, _ := r[column].(string)
	return s
}

// NullString returns the named column as a *string, or nil when absent or NULL.
func (r Row) NullString(column string) *string {
	s, ok := r[column].(string)
	if !ok {
		return nil
	}
	return &s
}

// Int64 returns the named column as an int64, coercing the numeric types the
// drivers are known to produce. Absent or NULL columns yield zero.
func (r Row) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// NullInt64 returns the named column as an *int64, or nil when absent or NULL.
func (r Row) NullInt64(column string) *int64 {
	if r[column] == nil {
		return nil
	}
	v := r.Int64(column)
	return &v
}

// Float64 returns the named column as a float64, or zero when absent or NULL.
func (r Row) Float64(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// Bool returns the named column as a bool. Integer columns are treated as
// booleans with zero meaning false, matching SQLite's storage of boolean
// values as 0/1.
func (r Row) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int32:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// Time returns the named column as a [time.Time], interpreting integer values
// as Unix epoch seconds. Absent or NULL columns yield the zero time.
func (r Row) Time(column string) time.Time {
	switch v := r[column].(type) {
	case time.Time:
		return v
	case int64:
		return time.Unix(v, 0).UTC()
	case int32:
		return time.Unix(int64(v), 0).UTC()
	case float64:
		return time.Unix(int64(v), 0).UTC()
	default:
		return time.Time{}
	}
}

// normalize converts driver-specific scan values into the small set of types
// the [Row] accessors understand.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return v
	}
}

// describeArgs renders bound values for debug logging, truncating long strings
// so log lines stay readable.
func describeArgs(args []any) []string {
	const max = 64
	out := make([]string, len(args))
	for i, a := range args {
		s := fmt.Sprintf("%v", a)
		if len(s) > max {
			s = s[:max] + "..."
		}
		out[i] = s
	}
	return out
}
