// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package account

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
	"github.com/satomatashiki/manabiya/internal/users/auth"
)

// SQLAccountRepository implements AccountRepository over the storage adapter.
type SQLAccountRepository struct {
	db storage.DB
}

// NewAccountRepository creates a new SQL implementation of AccountRepository.
func NewAccountRepository(db storage.DB) *SQLAccountRepository {
	return &SQLAccountRepository{db: db}
}

const profileColumns = `id, email, username, display_name, bio, avatar_url, role, password, created_at, updated_at`

/*
FindByID retrieves a profile record by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *auth.Profile: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *SQLAccountRepository) FindByID(context context.Context, id string) (*auth.Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`

	row, err := repository.db.Prepare(query).Bind(id).First(context)
	if err != nil {
		return nil, fmt.Errorf("sql_account_repo_find_by_id_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Profile")
	}

	return profileFromRow(row), nil
}

/*
FindByUsername retrieves a profile record by its public handle.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *auth.Profile: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *SQLAccountRepository) FindByUsername(context context.Context, username string) (*auth.Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE username = ?`

	row, err := repository.db.Prepare(query).Bind(username).First(context)
	if err != nil {
		return nil, fmt.Errorf("sql_account_repo_find_by_username_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Profile")
	}

	return profileFromRow(row), nil
}

/*
UpdateProfile applies a partial update to the mutable profile fields.

Description: Builds the SET list from the provided fields only; updated_at is
stamped by the builder. An input with no fields is a no-op.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateProfileInput

Returns:
  - error: Update failures
*/
func (repository *SQLAccountRepository) UpdateProfile(context context.Context, id string, input UpdateProfileInput) error {
	update := storage.NewUpdate("profiles")
	storage.SetIf(update, "display_name", input.DisplayName)
	storage.SetIf(update, "bio", input.Bio)
	storage.SetIf(update, "avatar_url", input.AvatarURL)
	storage.SetIf(update, "username", input.Username)

	if input.SocialLinks != nil {
		if *input.SocialLinks == nil {
			update.Set("social_links", nil)
		} else {
			raw, err := json.Marshal(*input.SocialLinks)
			if err != nil {
				return fmt.Errorf("sql_account_repo_encode_failed: %w", err)
			}
			update.Set("social_links", string(raw))
		}
	}

	update.Where("id = ?", id)

	statement, ok := update.Build(repository.db)
	if !ok {
		return nil
	}

	if _, err := statement.Run(context); err != nil {
		return fmt.Errorf("sql_account_repo_update_failed: %w", err)
	}
	return nil
}

/*
UpdatePassword updates only the password hash for a specific profile.

Parameters:
  - context: context.Context
  - id: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *SQLAccountRepository) UpdatePassword(context context.Context, id, newHash string) error {
	const query = `UPDATE profiles SET password = ?, updated_at = ? WHERE id = ?`

	_, err := repository.db.Prepare(query).Bind(newHash, time.Now().Unix(), id).Run(context)
	if err != nil {
		return fmt.Errorf("sql_account_repo_update_password_failed: %w", err)
	}
	return nil
}

// profileFromRow hydrates a Profile entity from an adapter row.
func profileFromRow(row storage.Row) *auth.Profile {
	return &auth.Profile{
		ID:           row.String("id"),
		Email:        row.String("email"),
		Username:     row.NullString("username"),
		DisplayName:  row.String("display_name"),
		Bio:          row.String("bio"),
		AvatarURL:    row.NullString("avatar_url"),
		Role:         sec.Role(row.String("role")),
		PasswordHash: row.String("password"),
		CreatedAt:    row.Time("created_at"),
		UpdatedAt:    row.Time("updated_at"),
	}
}
