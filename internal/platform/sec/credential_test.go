// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

func TestHashPassword_Format(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	salt, digest, found := strings.Cut(hash, ":")
	require.True(t, found, "stored credential must be salt:hash")
	assert.Len(t, salt, 32, "salt is 16 random bytes hex-encoded")
	assert.Len(t, digest, 64, "digest is a 32-byte key hex-encoded")
	assert.Equal(t, strings.ToLower(salt), salt)
	assert.Equal(t, strings.ToLower(digest), digest)
}

func TestHashPassword_SaltsAreUnique(t *testing.T) {
	first, err := sec.HashPassword("same password")
	require.NoError(t, err)
	second, err := sec.HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash must use a fresh random salt")
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("s3cret-passphrase")
	require.NoError(t, err)

	assert.True(t, sec.VerifyPassword("s3cret-passphrase", hash))
	assert.False(t, sec.VerifyPassword("wrong-passphrase", hash))
	assert.False(t, sec.VerifyPassword("", hash))
}

func TestVerifyPassword_MalformedStoredValueFailsClosed(t *testing.T) {
	testCases := []struct {
		name   string
		stored string
	}{
		{name: "empty", stored: ""},
		{name: "no separator", stored: "deadbeefdeadbeef"},
		{name: "missing hash", stored: "deadbeefdeadbeefdeadbeefdeadbeef:"},
		{name: "missing salt", stored: ":deadbeef"},
		{name: "non-hex hash", stored: "deadbeefdeadbeefdeadbeefdeadbeef:zzzz"},
		{name: "extra separator", stored: "aa:bb:cc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, sec.VerifyPassword("anything", tc.stored))
		})
	}
}

func TestGenerateToken(t *testing.T) {
	first, err := sec.GenerateToken()
	require.NoError(t, err)
	second, err := sec.GenerateToken()
	require.NoError(t, err)

	assert.Len(t, first, 64, "token is 32 random bytes hex-encoded")
	assert.NotEqual(t, first, second)
	assert.Equal(t, strings.ToLower(first), first)
}
