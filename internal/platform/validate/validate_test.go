// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/validate"
)

func TestValidator_PassingChainReturnsNil(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("email", "student@example.com").
		Email("email", "student@example.com").
		MinLen("password", "correct horse", 8).
		Err()

	assert.NoError(t, err)
}

func TestValidator_CollectsAllFailures(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("name", "").
		Email("email", "not-an-email").
		Range("capacity", 0, 1, 100).
		Err()

	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Len(t, appErr.Details, 3)
}

func TestValidator_Username(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "simple handle", value: "manabi_ya", valid: true},
		{name: "minimum length", value: "abc", valid: true},
		{name: "maximum length", value: "abcdefghij0123456789", valid: true},
		{name: "too short", value: "ab", valid: false},
		{name: "too long", value: "abcdefghij0123456789x", valid: false},
		{name: "hyphen rejected", value: "mana-biya", valid: false},
		{name: "space rejected", value: "mana biya", valid: false},
		{name: "empty", value: "", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Username("username", tc.value).Err()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidator_Slug(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "single word", value: "golang", valid: true},
		{name: "hyphenated", value: "intro-to-go-101", valid: true},
		{name: "leading hyphen", value: "-intro", valid: false},
		{name: "uppercase", value: "Intro", valid: false},
		{name: "empty", value: "", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Slug("slug", tc.value).Err()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.OneOf("pricing", "paid", "free", "paid").Err())

	v = &validate.Validator{}
	assert.Error(t, v.OneOf("pricing", "donation", "free", "paid").Err())
}

func TestValidator_NonNegative(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.NonNegative("price_cents", 0).Err())

	v = &validate.Validator{}
	assert.Error(t, v.NonNegative("price_cents", -100).Err())
}
