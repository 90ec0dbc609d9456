// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "no placeholders",
			query:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "single placeholder",
			query:    "SELECT * FROM profiles WHERE id = ?",
			expected: "SELECT * FROM profiles WHERE id = $1",
		},
		{
			name:     "multiple placeholders numbered in order",
			query:    "INSERT INTO sessions (token, profile_id, expires_at) VALUES (?, ?, ?)",
			expected: "INSERT INTO sessions (token, profile_id, expires_at) VALUES ($1, $2, $3)",
		},
		{
			name:     "question mark inside string literal preserved",
			query:    "SELECT * FROM lessons WHERE title = '?' AND id = ?",
			expected: "SELECT * FROM lessons WHERE title = '?' AND id = $1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, rebind(tc.query))
		})
	}
}
