// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package account_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
	"github.com/satomatashiki/manabiya/internal/users/account"
	"github.com/satomatashiki/manabiya/internal/users/auth"
	"github.com/satomatashiki/manabiya/pkg/pointer"
)

type fixture struct {
	account *account.Service
	auth    *auth.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "account.db")
	db, err := storage.OpenSQLite(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessionRepo := auth.NewSessionRepository(db)
	authService := auth.NewService(
		auth.NewProfileRepository(db),
		sessionRepo,
		auth.NewResetTokenRepository(db),
		nil,
	)
	accountService := account.NewService(
		account.NewAccountRepository(db),
		sessionRepo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return fixture{account: accountService, auth: authService}
}

func (f fixture) register(t *testing.T, email string) *auth.Profile {
	t.Helper()

	profile, err := f.auth.Register(context.Background(), auth.RegisterInput{
		Email:       email,
		Password:    "hunter2hunter2",
		DisplayName: "Before",
		Role:        sec.RoleStudent,
	})
	require.NoError(t, err)
	return profile
}

func TestUpdateProfile_PartialFieldsOnly(t *testing.T) {
	f := newFixture(t)
	profile := f.register(t, "student@example.com")

	// Seed a bio so we can observe it surviving an unrelated update.
	_, err := f.account.UpdateProfile(context.Background(), profile.ID, account.UpdateProfileInput{
		Bio: pointer.To("Original bio"),
	})
	require.NoError(t, err)

	updated, err := f.account.UpdateProfile(context.Background(), profile.ID, account.UpdateProfileInput{
		DisplayName: pointer.To("After"),
	})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.DisplayName)
	assert.Equal(t, "Original bio", updated.Bio, "omitted field must keep its stored value")
}

func TestUpdateProfile_NoFieldsIsNoOp(t *testing.T) {
	f := newFixture(t)
	profile := f.register(t, "student@example.com")

	updated, err := f.account.UpdateProfile(context.Background(), profile.ID, account.UpdateProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, "Before", updated.DisplayName)
	assert.Equal(t, profile.UpdatedAt.Unix(), updated.UpdatedAt.Unix(),
		"an empty update must not stamp updated_at")
}

func TestUpdateProfile_UsernameConflict(t *testing.T) {
	f := newFixture(t)
	first := f.register(t, "first@example.com")
	second := f.register(t, "second@example.com")

	_, err := f.account.UpdateProfile(context.Background(), first.ID, account.UpdateProfileInput{
		Username: pointer.To("taken_handle"),
	})
	require.NoError(t, err)

	_, err = f.account.UpdateProfile(context.Background(), second.ID, account.UpdateProfileInput{
		Username: pointer.To("taken_handle"),
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// Setting your own current username again is not a conflict.
	_, err = f.account.UpdateProfile(context.Background(), first.ID, account.UpdateProfileInput{
		Username: pointer.To("taken_handle"),
	})
	assert.NoError(t, err)
}

func TestChangePassword_VerifiesCurrentAndKeepsSession(t *testing.T) {
	f := newFixture(t)
	profile := f.register(t, "student@example.com")

	session, err := f.auth.Login(context.Background(), auth.LoginInput{
		Email:    "student@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	other, err := f.auth.Login(context.Background(), auth.LoginInput{
		Email:    "student@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	// Wrong current password is rejected.
	err = f.account.ChangePassword(context.Background(), profile.ID, "wrong", "new-password-123", session.Token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Correct current password succeeds.
	err = f.account.ChangePassword(context.Background(), profile.ID, "hunter2hunter2", "new-password-123", session.Token)
	require.NoError(t, err)

	// The calling session survives; the other one is gone.
	_, err = f.auth.ResolveSession(context.Background(), session.Token)
	assert.NoError(t, err)
	_, err = f.auth.ResolveSession(context.Background(), other.Token)
	assert.Error(t, err)

	// Only the new password logs in.
	_, err = f.auth.Login(context.Background(), auth.LoginInput{
		Email:    "student@example.com",
		Password: "new-password-123",
	})
	assert.NoError(t, err)
}
