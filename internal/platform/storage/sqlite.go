// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// # Embedded SQLite Backend

type sqliteDB struct {
	db     *sql.DB
	logger *slog.Logger
}

/*
OpenSQLite opens (creating if necessary) an embedded SQLite database at the
given path and ensures the schema exists.

WAL journaling and foreign key enforcement are enabled on every connection.
Schema creation is idempotent, so opening an existing database is safe.

Parameters:
  - path: filesystem path of the database file.
  - logger: structured logger for query debug output.

Returns:
  - DB: the adapter handle.
  - error: an error if the file cannot be opened or the schema cannot be applied.
*/
func OpenSQLite(path string, logger *slog.Logger) (DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite_open_failed: %w", err)
	}

	// The modernc driver serializes writes internally; a single connection
	// avoids SQLITE_BUSY contention under the database/sql pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite_ping_failed: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite_schema_failed: %w", err)
	}

	return &sqliteDB{db: db, logger: logger}, nil
}

func (s *sqliteDB) Prepare(query string) Statement {
	return &sqliteStatement{db: s, query: query}
}

func (s *sqliteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteDB) Backend() Backend {
	return BackendSQLite
}

func (s *sqliteDB) Close() error {
	return s.db.Close()
}

// sqliteStatement binds in place and returns itself, so a statement value can
// be rebound and re-executed.
type sqliteStatement struct {
	db    *sqliteDB
	query string
	args  []any
}

func (s *sqliteStatement) Bind(args ...any) Statement {
	s.args = args
	return s
}

func (s *sqliteStatement) First(ctx context.Context) (Row, error) {
	s.log(ctx, "first")

	rows, err := s.db.db.QueryContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	row, err := scanRow(rows)
	if err != nil {
		return nil, err
	}
	return row, rows.Err()
}

func (s *sqliteStatement) All(ctx context.Context) ([]Row, error) {
	s.log(ctx, "all")

	rows, err := s.db.db.QueryContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *sqliteStatement) Run(ctx context.Context) (Result, error) {
	s.log(ctx, "run")

	res, err := s.db.db.ExecContext(ctx, s.query, s.args...)
	if err != nil {
		return Result{}, err
	}

	changes, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()

	return Result{
		Success: true,
		Meta:    Meta{Changes: changes, LastInsertID: lastID},
	}, nil
}

func (s *sqliteStatement) log(ctx context.Context, terminal string) {
	s.db.logger.DebugContext(ctx, "storage query",
		slog.String("backend", string(BackendSQLite)),
		slog.String("terminal", terminal),
		slog.String("query", s.query),
		slog.Any("args", describeArgs(s.args)),
	)
}

// scanRow reads the current cursor position into a column-name map.
func scanRow(rows *sql.Rows) (Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	if err := rows.Scan(pointers...); err != nil {
		return nil, err
	}

	row := make(Row, len(columns))
	for i, col := range columns {
		if values[i] == nil {
			continue
		}
		row[col] = normalize(values[i])
	}
	return row, nil
}
