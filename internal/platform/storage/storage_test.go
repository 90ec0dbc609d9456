// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package storage_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/platform/storage"
)

func openTestDB(t *testing.T) storage.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.OpenSQLite(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func insertProfile(t *testing.T, db storage.DB, id, email, role string) {
	t.Helper()

	now := time.Now().Unix()
	res, err := db.Prepare(`
		INSERT INTO profiles (id, email, role, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`).Bind(id, email, role, "x:y", now, now).Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, int64(1), res.Meta.Changes)
}

func TestFirst_NoRows(t *testing.T) {
	db := openTestDB(t)

	row, err := db.Prepare("SELECT * FROM profiles WHERE id = ?").
		Bind("missing").
		First(context.Background())

	require.NoError(t, err)
	assert.Nil(t, row, "zero matches must yield a nil row, not an error")
}

func TestFirst_TypedAccessors(t *testing.T) {
	db := openTestDB(t)
	insertProfile(t, db, "p1", "sensei@example.com", "instructor")

	row, err := db.Prepare("SELECT * FROM profiles WHERE id = ?").
		Bind("p1").
		First(context.Background())

	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, "sensei@example.com", row.String("email"))
	assert.Equal(t, "instructor", row.String("role"))
	assert.Nil(t, row.NullString("username"), "NULL column reads as nil pointer")
	assert.False(t, row.Time("created_at").IsZero())
	assert.Equal(t, "", row.String("no_such_column"))
	assert.Equal(t, int64(0), row.Int64("no_such_column"))
}

func TestAll_EmptyResultIsNonNil(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Prepare("SELECT * FROM profiles").All(context.Background())

	require.NoError(t, err)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestAll_ReturnsEveryRow(t *testing.T) {
	db := openTestDB(t)
	insertProfile(t, db, "p1", "a@example.com", "student")
	insertProfile(t, db, "p2", "b@example.com", "student")

	rows, err := db.Prepare("SELECT id FROM profiles ORDER BY id").All(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0].String("id"))
	assert.Equal(t, "p2", rows[1].String("id"))
}

func TestRun_ReportsChanges(t *testing.T) {
	db := openTestDB(t)
	insertProfile(t, db, "p1", "a@example.com", "student")
	insertProfile(t, db, "p2", "b@example.com", "student")

	res, err := db.Prepare("DELETE FROM profiles WHERE role = ?").
		Bind("student").
		Run(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(2), res.Meta.Changes)
}

func TestRun_ConstraintViolationPropagates(t *testing.T) {
	db := openTestDB(t)
	insertProfile(t, db, "p1", "dup@example.com", "student")

	now := time.Now().Unix()
	_, err := db.Prepare(`
		INSERT INTO profiles (id, email, role, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`).Bind("p2", "dup@example.com", "student", "x:y", now, now).Run(context.Background())

	assert.Error(t, err, "duplicate (email, role) must surface the engine error unmodified")
}

func TestSameEmailDifferentRoleAllowed(t *testing.T) {
	db := openTestDB(t)
	insertProfile(t, db, "p1", "both@example.com", "student")
	insertProfile(t, db, "p2", "both@example.com", "instructor")

	rows, err := db.Prepare("SELECT id FROM profiles WHERE email = ?").
		Bind("both@example.com").
		All(context.Background())

	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Prepare(`
		INSERT INTO sessions (token, profile_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`).Bind("tok", "no-such-profile", time.Now().Unix(), time.Now().Unix()).
		Run(context.Background())

	assert.Error(t, err)
}

func TestCascadeDelete(t *testing.T) {
	db := openTestDB(t)
	insertProfile(t, db, "p1", "a@example.com", "student")

	now := time.Now().Unix()
	_, err := db.Prepare(`
		INSERT INTO sessions (token, profile_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`).Bind("tok", "p1", now+3600, now).Run(context.Background())
	require.NoError(t, err)

	_, err = db.Prepare("DELETE FROM profiles WHERE id = ?").
		Bind("p1").
		Run(context.Background())
	require.NoError(t, err)

	row, err := db.Prepare("SELECT * FROM sessions WHERE token = ?").
		Bind("tok").
		First(context.Background())
	require.NoError(t, err)
	assert.Nil(t, row, "deleting a profile must cascade to its sessions")
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := storage.OpenSQLite(path, logger)
	require.NoError(t, err)
	insertProfile(t, db, "p1", "a@example.com", "student")
	require.NoError(t, db.Close())

	db, err = storage.OpenSQLite(path, logger)
	require.NoError(t, err)
	defer db.Close()

	row, err := db.Prepare("SELECT id FROM profiles WHERE id = ?").
		Bind("p1").
		First(context.Background())
	require.NoError(t, err)
	require.NotNil(t, row, "reopening must preserve existing data")
}
