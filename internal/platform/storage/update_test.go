// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/platform/storage"
	"github.com/satomatashiki/manabiya/pkg/pointer"
)

func TestUpdate_OnlyPresentFieldsChange(t *testing.T) {
	db := openTestDB(t)
	insertProfile(t, db, "p1", "a@example.com", "student")

	_, err := db.Prepare("UPDATE profiles SET display_name = ?, bio = ? WHERE id = ?").
		Bind("Original Name", "Original bio", "p1").
		Run(context.Background())
	require.NoError(t, err)

	u := storage.NewUpdate("profiles")
	storage.SetIf(u, "display_name", pointer.To("New Name"))
	storage.SetIf[string](u, "bio", nil)
	u.Where("id = ?", "p1")

	stmt, ok := u.Build(db)
	require.True(t, ok)

	res, err := stmt.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Meta.Changes)

	row, err := db.Prepare("SELECT * FROM profiles WHERE id = ?").
		Bind("p1").
		First(context.Background())
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, "New Name", row.String("display_name"))
	assert.Equal(t, "Original bio", row.String("bio"), "omitted field must keep its stored value")
}

func TestUpdate_StampsUpdatedAt(t *testing.T) {
	db := openTestDB(t)
	insertProfile(t, db, "p1", "a@example.com", "student")

	// Push updated_at into the past so the stamp is observable.
	past := time.Now().Add(-time.Hour).Unix()
	_, err := db.Prepare("UPDATE profiles SET updated_at = ? WHERE id = ?").
		Bind(past, "p1").
		Run(context.Background())
	require.NoError(t, err)

	u := storage.NewUpdate("profiles")
	u.Set("bio", "stamped")
	u.Where("id = ?", "p1")

	stmt, ok := u.Build(db)
	require.True(t, ok)
	_, err = stmt.Run(context.Background())
	require.NoError(t, err)

	row, err := db.Prepare("SELECT updated_at FROM profiles WHERE id = ?").
		Bind("p1").
		First(context.Background())
	require.NoError(t, err)
	assert.Greater(t, row.Int64("updated_at"), past)
}

func TestUpdate_NoFieldsSkipsStatement(t *testing.T) {
	u := storage.NewUpdate("profiles")
	storage.SetIf[string](u, "display_name", nil)
	u.Where("id = ?", "p1")

	assert.True(t, u.Empty())

	stmt, ok := u.Build(nil)
	assert.False(t, ok)
	assert.Nil(t, stmt)
}
