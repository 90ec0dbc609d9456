// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

// SQL implementations of the auth repositories.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement the domain-defined interfaces (e.g., [ProfileRepository]) on top
// of the backend-neutral [storage.DB] adapter, so the same code serves both
// the embedded SQLite database and PostgreSQL.
//
// # Error Mapping
//
// Zero-row lookups are mapped to domain-friendly [apperr.AppError] values to
// avoid leaking storage implementation details.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
)

// # Profile Repository

// SQLProfileRepository implements the ProfileRepository interface over the storage adapter.
type SQLProfileRepository struct {
	db storage.DB
}

// NewProfileRepository creates a new SQL implementation of the ProfileRepository.
func NewProfileRepository(db storage.DB) *SQLProfileRepository {
	return &SQLProfileRepository{db: db}
}

const profileColumns = `id, email, username, display_name, bio, avatar_url, social_links, role, password, created_at, updated_at`

/*
Create persists a new profile record.

Parameters:
  - context: context.Context
  - profile: *Profile (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *SQLProfileRepository) Create(context context.Context, profile *Profile) error {
	const query = `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err := repository.db.Prepare(query).Bind(
		profile.ID,
		profile.Email,
		profile.Username,
		profile.DisplayName,
		profile.Bio,
		profile.AvatarURL,
		nil, // social_links start empty; account updates fill them in
		string(profile.Role),
		profile.PasswordHash,
		profile.CreatedAt.Unix(),
		profile.UpdatedAt.Unix(),
	).Run(context)

	if err != nil {
		return fmt.Errorf("sql_profile_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a profile record by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Profile: Hydrated profile entity
  - error: apperr.NotFound or database errors
*/
func (repository *SQLProfileRepository) FindByID(context context.Context, id string) (*Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`

	row, err := repository.db.Prepare(query).Bind(id).First(context)
	if err != nil {
		return nil, fmt.Errorf("sql_profile_repo_find_by_id_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Profile")
	}

	return profileFromRow(row), nil
}

/*
FindByEmailAndRole retrieves the profile owning the (email, role) pair.

Parameters:
  - context: context.Context
  - email: string
  - role: sec.Role

Returns:
  - *Profile: Hydrated profile entity
  - error: apperr.NotFound or database errors
*/
func (repository *SQLProfileRepository) FindByEmailAndRole(context context.Context, email string, role sec.Role) (*Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE email = ? AND role = ?`

	row, err := repository.db.Prepare(query).Bind(email, string(role)).First(context)
	if err != nil {
		return nil, fmt.Errorf("sql_profile_repo_find_by_email_failed: %w", err)
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
  - *Profile: Hydrated profile entity
  - error: apperr.NotFound or database errors
*/
func (repository *SQLProfileRepository) FindByUsername(context context.Context, username string) (*Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE username = ?`

	row, err := repository.db.Prepare(query).Bind(username).First(context)
	if err != nil {
		return nil, fmt.Errorf("sql_profile_repo_find_by_username_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Profile")
	}

	return profileFromRow(row), nil
}

/*
UpdatePassword updates only the password hash for a specific profile.

Parameters:
  - context: context.Context
  - profileID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *SQLProfileRepository) UpdatePassword(context context.Context, profileID, newHash string) error {
	const query = `UPDATE profiles SET password = ?, updated_at = ? WHERE id = ?`

	_, err := repository.db.Prepare(query).Bind(newHash, time.Now().Unix(), profileID).Run(context)
	if err != nil {
		return fmt.Errorf("sql_profile_repo_update_password_failed: %w", err)
	}

	return nil
}

// profileFromRow hydrates a Profile entity from an adapter row.
func profileFromRow(row storage.Row) *Profile {
	return &Profile{
		ID:           row.String("id"),
		Email:        row.String("email"),
		Username:     row.NullString("username"),
		DisplayName:  row.String("display_name"),
		Bio:          row.String("bio"),
		AvatarURL:    row.NullString("avatar_url"),
		SocialLinks:  decodeSocialLinks(row.NullString("social_links")),
		Role:         sec.Role(row.String("role")),
		PasswordHash: row.String("password"),
		CreatedAt:    row.Time("created_at"),
		UpdatedAt:    row.Time("updated_at"),
	}
}

// decodeSocialLinks parses the stored link map. Corrupt data degrades to nil.
func decodeSocialLinks(raw *string) any {
	if raw == nil || *raw == "" {
		return nil
	}
	var links any
	if err := json.Unmarshal([]byte(*raw), &links); err != nil {
		return nil
	}
	return links
}

// # Session Repository

// SQLSessionRepository implements the SessionRepository interface over the storage adapter.
type SQLSessionRepository struct {
	db storage.DB
}

// NewSessionRepository creates a new SQL implementation of SessionRepository.
func NewSessionRepository(db storage.DB) *SQLSessionRepository {
	return &SQLSessionRepository{db: db}
}

/*
Create persists a new session record.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *SQLSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO sessions (token, profile_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := repository.db.Prepare(query).Bind(
		session.Token,
		session.ProfileID,
		session.ExpiresAt.Unix(),
		session.CreatedAt.Unix(),
	).Run(context)

	if err != nil {
		return fmt.Errorf("sql_session_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByToken retrieves an unexpired session by its opaque token.

Expiry is checked in the query itself so a stale session can never be
resolved, regardless of janitor timing.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.NotFound or execution errors
*/
func (repository *SQLSessionRepository) FindByToken(context context.Context, token string) (*Session, error) {
	const query = `
		SELECT token, profile_id, expires_at, created_at
		FROM sessions
		WHERE token = ? AND expires_at > ?`

	row, err := repository.db.Prepare(query).Bind(token, time.Now().Unix()).First(context)
	if err != nil {
		return nil, fmt.Errorf("sql_session_repo_find_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Session")
	}

	return &Session{
		Token:     row.String("token"),
		ProfileID: row.String("profile_id"),
		ExpiresAt: row.Time("expires_at"),
		CreatedAt: row.Time("created_at"),
	}, nil
}

/*
Delete removes a session by its token. Idempotent.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (repository *SQLSessionRepository) Delete(context context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = ?`

	_, err := repository.db.Prepare(query).Bind(token).Run(context)
	if err != nil {
		return fmt.Errorf("sql_session_repo_delete_failed: %w", err)
	}
	return nil
}

/*
DeleteAllForProfile removes every session belonging to the profile.

Parameters:
  - context: context.Context
  - profileID: string

Returns:
  - error: Batch deletion failures
*/
func (repository *SQLSessionRepository) DeleteAllForProfile(context context.Context, profileID string) error {
	const query = `DELETE FROM sessions WHERE profile_id = ?`

	_, err := repository.db.Prepare(query).Bind(profileID).Run(context)
	if err != nil {
		return fmt.Errorf("sql_session_repo_delete_all_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all sessions past their expiration.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of sessions removed
  - error: Cleanup failures
*/
func (repository *SQLSessionRepository) DeleteExpired(context context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= ?`

	result, err := repository.db.Prepare(query).Bind(time.Now().Unix()).Run(context)
	if err != nil {
		return 0, fmt.Errorf("sql_session_repo_delete_expired_failed: %w", err)
	}
	return result.Meta.Changes, nil
}

// # Reset Token Repository

// SQLResetTokenRepository implements ResetTokenRepository over the storage adapter.
type SQLResetTokenRepository struct {
	db storage.DB
}

// NewResetTokenRepository creates a new SQL implementation of ResetTokenRepository.
func NewResetTokenRepository(db storage.DB) *SQLResetTokenRepository {
	return &SQLResetTokenRepository{db: db}
}

/*
Create stores a reset token bound to a profile.

Parameters:
  - context: context.Context
  - token: string
  - profileID: string

Returns:
  - error: Persistence failures
*/
func (repository *SQLResetTokenRepository) Create(context context.Context, token string, profileID string) error {
	const query = `
		INSERT INTO password_resets (token, profile_id, used, expires_at, created_at)
		VALUES (?, ?, 0, ?, ?)`

	now := time.Now()
	_, err := repository.db.Prepare(query).Bind(
		token,
		profileID,
		now.Add(ResetTokenTTL).Unix(),
		now.Unix(),
	).Run(context)

	if err != nil {
		return fmt.Errorf("sql_reset_token_repo_create_failed: %w", err)
	}
	return nil
}

/*
Consume marks an unused, unexpired token as used and returns its profile.

The UPDATE's WHERE clause carries the used/expiry checks, so two concurrent
Consume calls cannot both succeed.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: ProfileID
  - error: apperr.NotFound when the token is missing, expired, or already used
*/
func (repository *SQLResetTokenRepository) Consume(context context.Context, token string) (string, error) {
	const update = `
		UPDATE password_resets
		SET used = 1
		WHERE token = ? AND used = 0 AND expires_at > ?`

	result, err := repository.db.Prepare(update).Bind(token, time.Now().Unix()).Run(context)
	if err != nil {
		return "", fmt.Errorf("sql_reset_token_repo_consume_failed: %w", err)
	}
	if result.Meta.Changes == 0 {
		return "", apperr.NotFound("Reset token")
	}

	const query = `SELECT profile_id FROM password_resets WHERE token = ?`
	row, err := repository.db.Prepare(query).Bind(token).First(context)
	if err != nil {
		return "", fmt.Errorf("sql_reset_token_repo_read_failed: %w", err)
	}
	if row == nil {
		return "", apperr.NotFound("Reset token")
	}

	return row.String("profile_id"), nil
}

/*
DeleteExpired permanently removes reset tokens past their expiry.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of tokens removed
  - error: Cleanup failures
*/
func (repository *SQLResetTokenRepository) DeleteExpired(context context.Context) (int64, error) {
	const query = `DELETE FROM password_resets WHERE expires_at <= ?`

	result, err := repository.db.Prepare(query).Bind(time.Now().Unix()).Run(context)
	if err != nil {
		return 0, fmt.Errorf("sql_reset_token_repo_delete_expired_failed: %w", err)
	}
	return result.Meta.Changes, nil
}
