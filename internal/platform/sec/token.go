// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of every opaque token (sessions, password resets).
// 256 bits makes collisions and guessing attacks computationally irrelevant,
// which is what the "tokens are globally unique" invariant leans on.
const tokenBytes = 32

// GenerateToken returns a fresh opaque token: 32 random bytes, hex-encoded
// (64 characters).
//
// # Security
//
// The bytes come from crypto/rand, never from a seeded PRNG. The same token
// shape is used for session tokens and password-reset tokens.
func GenerateToken() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}

	return hex.EncodeToString(raw), nil
}
