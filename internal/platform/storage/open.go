// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package storage

import (
	"context"
	"log/slog"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
)

// Options selects and configures the storage backend.
type Options struct {
	// DatabaseURL, when non-empty, selects the PostgreSQL backend.
	DatabaseURL string

	// SQLitePath is the embedded database file used when DatabaseURL is empty.
	SQLitePath string
}

/*
Open selects a backend from the provided options and returns a ready handle.

A non-empty DatabaseURL wins; otherwise the embedded SQLite database at
SQLitePath is opened, creating the file and schema on first use. The returned
handle is meant to be constructed once at startup and injected into every
store; nothing in this package keeps global state.

Parameters:
  - ctx: Context for the initial connection attempt.
  - opts: Backend selection options.
  - logger: Structured logger shared by the backend.

Returns:
  - DB: the adapter handle.
  - error: a configuration error when neither backend can be opened.
*/
func Open(ctx context.Context, opts Options, logger *slog.Logger) (DB, error) {
	if opts.DatabaseURL != "" {
		db, err := OpenPostgres(ctx, opts.DatabaseURL, logger)
		if err != nil {
			return nil, apperr.Config("failed to connect to PostgreSQL").WithCause(err)
		}
		logger.Info("storage backend ready", slog.String("backend", string(BackendPostgres)))
		return db, nil
	}

	if opts.SQLitePath == "" {
		return nil, apperr.Config("no database configured: set DATABASE_URL or SQLITE_PATH")
	}

	db, err := OpenSQLite(opts.SQLitePath, logger)
	if err != nil {
		return nil, apperr.Config("failed to open embedded database").WithCause(err)
	}
	logger.Info("storage backend ready",
		slog.String("backend", string(BackendSQLite)),
		slog.String("path", opts.SQLitePath),
	)
	return db, nil
}
