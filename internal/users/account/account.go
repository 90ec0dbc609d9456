// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

/*
Package account handles profile self-management and security settings.

It provides functionality for members to view and update their identity data
and to rotate their password while logged in.

# Architecture

  - Domain: This package depends on the auth package for the Profile entity.
  - Updates: Partial; only fields the caller supplies are written, so
    untouched columns keep their stored values exactly.
*/
package account

import (
	"context"

	"github.com/satomatashiki/manabiya/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for profile self-management.
type AccountRepository interface {
	/*
		FindByID retrieves a profile by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *auth.Profile: Hydrated entity
		  - error: apperr.NotFound or execution failures
	*/
	FindByID(context context.Context, id string) (*auth.Profile, error)

	/*
		FindByUsername retrieves a profile by its public handle.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *auth.Profile: Hydrated entity
		  - error: apperr.NotFound or execution failures
	*/
	FindByUsername(context context.Context, username string) (*auth.Profile, error)

	/*
		UpdateProfile applies a partial update. Nil fields are left untouched.

		Parameters:
		  - context: context.Context
		  - id: string
		  - input: UpdateProfileInput

		Returns:
		  - error: Persistence failures
	*/
	UpdateProfile(context context.Context, id string, input UpdateProfileInput) error

	/*
		UpdatePassword replaces only the password hash.

		Parameters:
		  - context: context.Context
		  - id: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, id, newHash string) error
}

// UpdateProfileInput defines the mutable subset of profile fields.
// A nil pointer means "leave unchanged".
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
	Username    *string
	SocialLinks *any
}

// Empty reports whether the input carries no changes at all.
func (input UpdateProfileInput) Empty() bool {
	return input.DisplayName == nil && input.Bio == nil && input.AvatarURL == nil &&
		input.Username == nil && input.SocialLinks == nil
}
