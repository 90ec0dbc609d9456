// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (Profile, Session) and logic for
authentication, authorization, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.

# Dual-Role Accounts

The same email address may hold one instructor account and one student
account. They are distinct profile rows with distinct IDs and passwords; a
session always belongs to exactly one of them.
*/
package auth

import (
	"time"

	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

// # Domain Entities

// Profile represents a registered member of the Manabiya platform.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     *string   `json:"username,omitempty"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	SocialLinks  any       `json:"social_links,omitempty"`
	Role         sec.Role  `json:"role"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session represents an active login session keyed by its opaque token.
type Session struct {
	Token     string    `json:"-"` // The raw token is only ever sent in the cookie.
	ProfileID string    `json:"profile_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session has passed its expiry instant.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.After(time.Now())
}

// Identity converts a profile into its context-carried identity.
func (p *Profile) Identity() *sec.Identity {
	username := ""
	if p.Username != nil {
		username = *p.Username
	}
	return &sec.Identity{
		UserID:   p.ID,
		Email:    p.Email,
		Username: username,
		Role:     p.Role,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldRole        = "role"
	FieldToken       = "token"
	FieldNewPassword = "new_password"
	FieldUser        = "user"
	FieldMessage     = "message"
)
