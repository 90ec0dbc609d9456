// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// # PostgreSQL Backend

// Opinionated pool settings for the Manabiya workload.
const (
	// maxConns is the maximum number of connections in the pool.
	maxConns = 25
	// minConns keeps a warm set of connections to avoid cold-start latency.
	minConns = 5
	// maxConnLifetime ensures connections are periodically recycled.
	maxConnLifetime = 60 * time.Minute
	// maxConnIdleTime closes connections that have been idle too long.
	maxConnIdleTime = 10 * time.Minute
	// healthCheckPeriod is the frequency of background connection health checks.
	healthCheckPeriod = 1 * time.Minute
	// connectTimeout is the maximum time allowed to establish a new connection.
	connectTimeout = 5 * time.Second
)

type postgresDB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

/*
OpenPostgres creates and validates a PostgreSQL-backed adapter handle.

Parameters:
  - ctx: Context for the initial connection attempt.
  - dsn: A libpq-compatible connection string or postgres:// URL.
  - logger: Structured logger for query debug output.

Returns:
  - DB: the adapter handle.
  - error: an error if the DSN is invalid or the database is unreachable.
*/
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (DB, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres_invalid_dsn: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres_pool_failed: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres_ping_failed: %w", err)
	}

	return &postgresDB{pool: pool, logger: logger}, nil
}

func (p *postgresDB) Prepare(query string) Statement {
	return &postgresStatement{db: p, query: rebind(query)}
}

func (p *postgresDB) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *postgresDB) Backend() Backend {
	return BackendPostgres
}

func (p *postgresDB) Close() error {
	p.pool.Close()
	return nil
}

// postgresStatement is immutable: Bind returns a new value, so prepared
// statements can be shared across goroutines.
type postgresStatement struct {
	db    *postgresDB
	query string
	args  []any
}

func (p *postgresStatement) Bind(args ...any) Statement {
	return &postgresStatement{db: p.db, query: p.query, args: args}
}

func (p *postgresStatement) First(ctx context.Context) (Row, error) {
	p.log(ctx, "first")

	rows, err := p.db.pool.Query(ctx, p.query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	columns := rows.FieldDescriptions()
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	row := make(Row, len(columns))
	for i, col := range columns {
		if values[i] == nil {
			continue
		}
		row[col.Name] = normalize(values[i])
	}
	return row, rows.Err()
}

func (p *postgresStatement) All(ctx context.Context) ([]Row, error) {
	p.log(ctx, "all")

	rows, err := p.db.pool.Query(ctx, p.query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0)
	columns := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if values[i] == nil {
				continue
			}
			row[col.Name] = normalize(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (p *postgresStatement) Run(ctx context.Context) (Result, error) {
	p.log(ctx, "run")

	tag, err := p.db.pool.Exec(ctx, p.query, p.args...)
	if err != nil {
		return Result{}, err
	}

	// pgx does not report last-insert IDs; entities use application-generated
	// identifiers, so only the affected count matters here.
	return Result{
		Success: true,
		Meta:    Meta{Changes: tag.RowsAffected()},
	}, nil
}

func (p *postgresStatement) log(ctx context.Context, terminal string) {
	p.db.logger.DebugContext(ctx, "storage query",
		slog.String("backend", string(BackendPostgres)),
		slog.String("terminal", terminal),
		slog.String("query", p.query),
		slog.Any("args", describeArgs(p.args)),
	)
}

// rebind rewrites `?` placeholders to PostgreSQL's numbered $n form. Question
// marks inside single-quoted literals are left untouched.
func rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '?' && !inLiteral:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
