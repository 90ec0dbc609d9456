// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// SessionTTL is the duration a login session remains valid.
	// One week balances convenience against exposure of a stolen cookie.
	SessionTTL = 7 * 24 * time.Hour

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// PasswordMinLen is the minimum accepted password length.
	PasswordMinLen = 8
)
