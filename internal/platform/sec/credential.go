// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

// Package sec provides cryptographic primitives for credentials and tokens.
//
// # Architecture
//
// This package isolates security-sensitive code (password key derivation,
// secure token generation) from the domain logic. It is an Infrastructure
// service consumed by the auth service layer.
//
// # Credential Format
//
// Stored credentials use the bit-exact external format
//
//	"<32-hex-char salt>:<64-hex-char hash>"
//
// where the salt is 16 random bytes hex-encoded and the hash is a 256-bit
// PBKDF2-SHA256 key derived with 100,000 iterations. Migrations and external
// tooling depend on this exact shape; do not change it without a credential
// re-hash plan.
package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// credentialSaltBytes is the raw salt length before hex encoding.
	credentialSaltBytes = 16

	// credentialIterations is the PBKDF2 cost factor. High enough that an
	// offline brute force is expensive; low enough that login stays under
	// ~100ms on commodity hardware.
	credentialIterations = 100_000

	// credentialKeyBytes is the derived key length (256 bits).
	credentialKeyBytes = 32
)

// HashPassword derives a storable credential from a plain-text password.
//
// # Behavior
//
// A fresh random salt is drawn from the OS CSPRNG on every call, so hashing
// the same password twice never yields the same output.
//
// # Returns
//   - The credential string "salt:hash", or an err if the random source fails.
func HashPassword(plainTextPassword string) (string, error) {
	rawSalt := make([]byte, credentialSaltBytes)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", fmt.Errorf("sec: failed to generate credential salt: %w", err)
	}

	salt := hex.EncodeToString(rawSalt)
	hash := deriveKey(plainTextPassword, salt)

	return salt + ":" + hash, nil
}

// VerifyPassword reports whether a plain-text password matches a stored credential.
//
// # Failure Semantics
//
// Malformed stored values (missing delimiter, empty parts) fail closed: the
// function returns false rather than erroring. A corrupted credential row must
// never let a login through, and callers treat any false identically.
func VerifyPassword(plainTextPassword, storedCredential string) bool {
	salt, storedHash, ok := strings.Cut(storedCredential, ":")
	if !ok || salt == "" || storedHash == "" {
		return false
	}

	derived := deriveKey(plainTextPassword, salt)

	// Constant-time comparison; both sides are hex of fixed length for
	// well-formed credentials.
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedHash)) == 1
}

// deriveKey runs PBKDF2-SHA256 over the password.
//
// The salt parameter is the hex STRING, consumed as UTF-8 bytes. That matches
// the external credential format, which was produced by tooling that feeds the
// encoded salt (not the raw bytes) into the KDF. Changing this breaks
// verification of every existing credential.
func deriveKey(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), credentialIterations, credentialKeyBytes, sha256.New)
	return hex.EncodeToString(key)
}
