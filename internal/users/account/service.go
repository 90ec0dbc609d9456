// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/users/auth"
)

// # Service Layer

// Service orchestrates business logic for profile self-management.
type Service struct {
	accountRepository AccountRepository
	sessionRepository auth.SessionRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	accountRepo AccountRepository,
	sessionRepo auth.SessionRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRepository: sessionRepo,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a member.

Parameters:
  - context: context.Context
  - profileID: string

Returns:
  - *auth.Profile: The hydrated profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, profileID string) (*auth.Profile, error) {
	profile, err := service.accountRepository.FindByID(context, profileID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

/*
UpdateProfile applies a partial set of changes to a profile.

Description: Writes only the supplied fields; omitted fields keep their
stored values. When no fields are supplied, nothing is written and the
current state is returned as-is.

Parameters:
  - context: context.Context
  - profileID: string
  - input: UpdateProfileInput

Returns:
  - *auth.Profile: The refreshed profile after the update
  - error: Conflict, update, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, profileID string, input UpdateProfileInput) (*auth.Profile, error) {

	// A username change must not collide with another profile's handle.
	if input.Username != nil {
		existing, err := service.accountRepository.FindByUsername(context, *input.Username)
		if err == nil && existing.ID != profileID {
			return nil, apperr.Conflict("Username is already taken")
		}
	}

	if !input.Empty() {
		if err := service.accountRepository.UpdateProfile(context, profileID, input); err != nil {
			return nil, fmt.Errorf("account_service_update_failed: %w", err)
		}
		service.logger.Info("profile_updated", slog.String("profile_id", profileID))
	}

	// Re-fetch so the response reflects exactly what is stored.
	return service.accountRepository.FindByID(context, profileID)
}

// # Security Settings

/*
ChangePassword rotates the password for an authenticated member.

Description: Verifies the current password, stores the new hash, and deletes
every other active session so stolen cookies stop working.

Parameters:
  - context: context.Context
  - profileID: string
  - currentPassword: string
  - newPassword: string
  - currentToken: string (the session performing the change, kept alive)

Returns:
  - error: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, profileID, currentPassword, newPassword, currentToken string) error {
	profile, err := service.accountRepository.FindByID(context, profileID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing the change.
	if !sec.VerifyPassword(currentPassword, profile.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("account_service_change_password_hash_failed: %w", err)
	}

	if err := service.accountRepository.UpdatePassword(context, profileID, hashedPassword); err != nil {
		return fmt.Errorf("account_service_change_password_update_failed: %w", err)
	}

	// Security side effect: destroy every session, then re-create the caller's.
	current, findErr := service.sessionRepository.FindByToken(context, currentToken)
	_ = service.sessionRepository.DeleteAllForProfile(context, profileID)
	if findErr == nil {
		_ = service.sessionRepository.Create(context, current)
	}

	service.logger.Info("password_changed", slog.String("profile_id", profileID))
	return nil
}
