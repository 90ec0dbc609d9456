// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

/*
Package auth implements the core identity and access management system.

It handles everything from registration and secure password hashing to the
session lifecycle built on opaque cookie tokens persisted in SQL.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Password recovery).
  - Repository: Abstracted interfaces over the storage adapter, with an
    optional Redis cache in front of session lookups.
  - Security: PBKDF2-hashed credentials and constant-time verification.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/pkg/uuidv7"
)

// # Service Definition

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
type Service struct {
	profileRepository    ProfileRepository
	sessionRepository    SessionRepository
	resetTokenRepository ResetTokenRepository

	// sessionCache may be nil; session resolution then always hits SQL.
	sessionCache SessionCache
}

// NewService constructs a new [Service] with necessary dependencies.
//
// Pass a nil cache to disable session caching.
func NewService(
	profileRepo ProfileRepository,
	sessionRepo SessionRepository,
	resetRepo ResetTokenRepository,
	cache SessionCache,
) *Service {
	return &Service{
		profileRepository:    profileRepo,
		sessionRepository:    sessionRepo,
		resetTokenRepository: resetRepo,
		sessionCache:         cache,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        sec.Role
	Username    *string
}

/*
Register validates, hashes, and persists a brand new profile.

Description: Enrollment of a new member under one role. The same email may
register once as an instructor and once as a student; those are independent
accounts.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Profile: Created entity
  - error: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Profile, error) {

	// Verify (email, role) uniqueness. Return a client-safe Conflict error.
	_, err := service.profileRepository.FindByEmailAndRole(context, input.Email, input.Role)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered for this role")
	}

	// Verify username uniqueness across all profiles.
	if input.Username != nil {
		_, err = service.profileRepository.FindByUsername(context, *input.Username)
		if err == nil {
			return nil, apperr.Conflict("Username is already taken")
		}
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new Profile entity. Time-sortable ID to keep index order.
	profile := &Profile{
		ID:           uuidv7.New(),
		Email:        input.Email,
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		Role:         input.Role,
		PasswordHash: hashedPassword,
	}

	// Persist the profile to the database
	if err := service.profileRepository.Create(context, profile); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return profile, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	Token     string
	ExpiresAt time.Time
	Profile   *Profile
}

/*
Login validates credentials and establishes a session.

Description: With dual-role accounts the instructor profile is tried first,
then the student profile, matching how returning members expect a shared
email to behave. Every failure path returns the same generic message to
prevent account enumeration.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session token and profile
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// Instructor-first lookup, falling back to the student account.
	profile, err := service.profileRepository.FindByEmailAndRole(context, input.Email, sec.RoleInstructor)
	if err != nil {
		profile, err = service.profileRepository.FindByEmailAndRole(context, input.Email, sec.RoleStudent)
	}

	// Unknown email: generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// Constant-time credential verification; malformed stored hashes fail closed.
	if !sec.VerifyPassword(input.Password, profile.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	return service.createSession(context, profile)
}

// createSession mints an opaque token and persists the session row.
func (service *Service) createSession(context context.Context, profile *Profile) (*LoginSession, error) {
	token, err := sec.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(SessionTTL)
	session := &Session{
		Token:     token,
		ProfileID: profile.ID,
		ExpiresAt: expiresAt,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	if service.sessionCache != nil {
		_ = service.sessionCache.Set(context, session)
	}

	return &LoginSession{
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   profile,
	}, nil
}

/*
Logout permanently removes the session for the given token.

Description: Idempotent; logging out with a stale or unknown token succeeds.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (service *Service) Logout(context context.Context, token string) error {
	if service.sessionCache != nil {
		_ = service.sessionCache.Delete(context, token)
	}

	if err := service.sessionRepository.Delete(context, token); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Resolution

/*
ResolveSession maps an opaque cookie token onto an authenticated identity.

Description: Checks the cache first when one is wired, then falls back to SQL
and repopulates the cache. An expired session resolves exactly like a missing
one.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *sec.Identity: The identity the session belongs to
  - error: apperr.Unauthorized when the token does not resolve
*/
func (service *Service) ResolveSession(context context.Context, token string) (*sec.Identity, error) {
	var session *Session
	var err error

	if service.sessionCache != nil {
		session, err = service.sessionCache.Get(context, token)
	}

	if session == nil {
		session, err = service.sessionRepository.FindByToken(context, token)
		if err != nil {
			return nil, apperr.Unauthorized("Invalid or expired session")
		}
		if service.sessionCache != nil {
			_ = service.sessionCache.Set(context, session)
		}
	}

	profile, err := service.profileRepository.FindByID(context, session.ProfileID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	return profile.Identity(), nil
}

/*
CurrentProfile returns the full profile behind an authenticated identity.

Parameters:
  - context: context.Context
  - profileID: string

Returns:
  - *Profile: Hydrated entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) CurrentProfile(context context.Context, profileID string) (*Profile, error) {
	return service.profileRepository.FindByID(context, profileID)
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow for one account.

Description: Generates a single-use token bound to the (email, role) profile.
NOTE: A missing account does not produce an error, to prevent enumeration.

Parameters:
  - context: context.Context
  - email: string
  - role: sec.Role

Returns:
  - string: Reset token (empty when no matching account exists)
  - error: Generation or persistence errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string, role sec.Role) (string, error) {
	profile, err := service.profileRepository.FindByEmailAndRole(context, email, role)
	if err != nil {
		return "", nil
	}

	token, err := sec.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Create(context, token, profile.ID); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Consumes the single-use token, hashes the new password, updates
the profile, and deletes every active session for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Consume atomically: a reused, expired, or unknown token fails here.
	profileID, err := service.resetTokenRepository.Consume(context, token)
	if err != nil {
		var appErr *apperr.AppError
		if errors.As(err, &appErr) {
			return apperr.Unauthorized("Reset token is invalid or expired")
		}
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.profileRepository.UpdatePassword(context, profileID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: remove EVERY active session for this profile
	_ = service.sessionRepository.DeleteAllForProfile(context, profileID)

	return nil
}

// # Maintenance

// CleanupSessions removes expired sessions. Wired into the janitor.
func (service *Service) CleanupSessions(context context.Context) (int64, error) {
	return service.sessionRepository.DeleteExpired(context)
}

// CleanupResetTokens removes expired reset tokens. Wired into the janitor.
func (service *Service) CleanupResetTokens(context context.Context) (int64, error) {
	return service.resetTokenRepository.DeleteExpired(context)
}
