// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package sec

// # User Roles

// Role represents the kind of account: an instructor sells courses inside
// their spaces, a student enrolls and purchases.
type Role string

const (
	// RoleInstructor owns spaces, courses, and lessons.
	RoleInstructor Role = "instructor"

	// RoleStudent is the default role for enrolling and purchasing accounts.
	RoleStudent Role = "student"
)

// IsValid reports whether the role is one of the known account kinds.
func (r Role) IsValid() bool {
	return r == RoleInstructor || r == RoleStudent
}

// # Request Identity

// Identity is the authenticated caller attached to a request context after
// the session cookie has been resolved against the sessions table.
//
// # Why a separate type?
//
// Handlers and middleware need the caller's id and role without importing the
// auth domain package, which would create an import cycle through the
// middleware chain.
type Identity struct {
	// UserID is the profile UUID owning the session.
	UserID string `json:"user_id"`
	// Email is the login email of the account.
	Email string `json:"email"`
	// Username is the public handle (set for instructors, optional otherwise).
	Username string `json:"username,omitempty"`
	// Role discriminates instructor and student accounts.
	Role Role `json:"role"`
}

// IsInstructor reports whether the identity belongs to an instructor account.
func (i *Identity) IsInstructor() bool {
	return i != nil && i.Role == RoleInstructor
}

// IsStudent reports whether the identity belongs to a student account.
func (i *Identity) IsStudent() bool {
	return i != nil && i.Role == RoleStudent
}
