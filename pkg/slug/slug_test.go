// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satomatashiki/manabiya/pkg/slug"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Intro to Watercolor", "intro-to-watercolor"},
		{"Café & Crème", "cafe-creme"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"UPPER case 123", "upper-case-123"},
		{"multiple---hyphens", "multiple-hyphens"},
		{"émigré", "emigre"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slug.From(tc.in), "slug of %q", tc.in)
	}
}
