// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package auth

import (
	"context"

	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

// # Profile Data Access

// ProfileRepository defines the data access contract for user profiles.
type ProfileRepository interface {

	/*
		FindByID returns the profile with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Profile, error)

	/*
		FindByEmailAndRole returns the profile for a given (email, role) pair.

		The same email may own one instructor and one student account; the
		pair is what uniquely identifies a profile.

		Parameters:
		  - context: context.Context
		  - email: string
		  - role: sec.Role

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmailAndRole(context context.Context, email string, role sec.Role) (*Profile, error)

	/*
		FindByUsername returns the profile with the given public handle.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*Profile, error)

	/*
		Create persists a brand-new profile to the storage.

		Parameters:
		  - context: context.Context
		  - profile: *Profile

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, profile *Profile) error

	/*
		UpdatePassword replaces only the profile's password hash.

		Parameters:
		  - context: context.Context
		  - profileID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, profileID, newHash string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for login sessions.
type SessionRepository interface {

	/*
		Create persists a new session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByToken returns the unexpired session matching the given token.

		An expired session is indistinguishable from a missing one.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByToken(context context.Context, token string) (*Session, error)

	/*
		Delete removes a session by its token. Deleting a session that does
		not exist is not an error.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error

	/*
		DeleteAllForProfile removes every session belonging to the profile.

		Parameters:
		  - context: context.Context
		  - profileID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteAllForProfile(context context.Context, profileID string) error

	/*
		DeleteExpired physically removes sessions whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - int64: Number of sessions removed
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) (int64, error)
}

// # Password Recovery Data Access

// ResetTokenRepository defines the contract for single-use password reset tokens.
type ResetTokenRepository interface {

	/*
		Create stores a reset token bound to a profile with an expiry instant.

		Parameters:
		  - context: context.Context
		  - token: string
		  - profileID: string

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, token string, profileID string) error

	/*
		Consume atomically marks an unused, unexpired token as used and
		returns the profile it belongs to. A second Consume of the same
		token fails.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: ProfileID
		  - error: apperr.NotFound when the token is missing, expired, or already used
	*/
	Consume(context context.Context, token string) (string, error)

	/*
		DeleteExpired physically removes reset tokens past their expiry.

		Parameters:
		  - context: context.Context

		Returns:
		  - int64: Number of tokens removed
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) (int64, error)
}

// # Session Caching

// SessionCache is an optional read-through cache in front of [SessionRepository].
//
// Lookups happen on every authenticated request, so a small TTL cache keeps
// the hot path off the primary database. Implementations must never serve a
// session past its expiry.
type SessionCache interface {
	Get(context context.Context, token string) (*Session, error)
	Set(context context.Context, session *Session) error
	Delete(context context.Context, token string) error
}
