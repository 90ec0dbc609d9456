// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satomatashiki/manabiya/internal/platform/ctxutil"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := ctxutil.WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))
}

func TestRequestID_MissingReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", ctxutil.GetRequestID(context.Background()))
}

func TestLogger_MissingFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, ctxutil.GetLogger(context.Background()))
}

func TestLogger_RoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ctxutil.WithLogger(context.Background(), logger)
	assert.Same(t, logger, ctxutil.GetLogger(ctx))
}

func TestAuthUser_RoundTrip(t *testing.T) {
	identity := &sec.Identity{UserID: "u1", Role: sec.RoleStudent}
	ctx := ctxutil.WithAuthUser(context.Background(), identity)
	assert.Same(t, identity, ctxutil.GetAuthUser(ctx))
}

func TestAuthUser_AnonymousReturnsNil(t *testing.T) {
	assert.Nil(t, ctxutil.GetAuthUser(context.Background()))
}
