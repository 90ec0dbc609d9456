// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
)

// cachedSessionTTL caps how long a session entry may live in the cache.
// Short enough that a deleted-elsewhere session goes stale quickly.
const cachedSessionTTL = 5 * time.Minute

// RedisSessionCache implements SessionCache using Redis.
type RedisSessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a new Redis-backed SessionCache.
func NewSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

// cachedSession is the JSON shape stored in Redis.
type cachedSession struct {
	ProfileID string `json:"profile_id"`
	ExpiresAt int64  `json:"expires_at"`
	CreatedAt int64  `json:"created_at"`
}

/*
Set caches a session under its token.

The Redis TTL is the smaller of [cachedSessionTTL] and the session's own
remaining lifetime, so the cache can never outlive the session.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Execution errors
*/
func (cache *RedisSessionCache) Set(context context.Context, session *Session) error {
	key := fmt.Sprintf("auth:session:%s", session.Token)

	remaining := time.Until(session.ExpiresAt)
	if remaining <= 0 {
		return nil
	}
	ttl := cachedSessionTTL
	if remaining < ttl {
		ttl = remaining
	}

	payload, err := json.Marshal(cachedSession{
		ProfileID: session.ProfileID,
		ExpiresAt: session.ExpiresAt.Unix(),
		CreatedAt: session.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("redis_session_cache_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_cache_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves a cached session by its token.

Description: Returns apperr.NotFound if the token is absent or the cached
session has expired.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Session: Hydrated session
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisSessionCache) Get(context context.Context, token string) (*Session, error) {
	key := fmt.Sprintf("auth:session:%s", token)

	payload, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_cache_get_failed: %w", err)
	}

	var stored cachedSession
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("redis_session_cache_unmarshal_failed: %w", err)
	}

	session := &Session{
		Token:     token,
		ProfileID: stored.ProfileID,
		ExpiresAt: time.Unix(stored.ExpiresAt, 0).UTC(),
		CreatedAt: time.Unix(stored.CreatedAt, 0).UTC(),
	}

	if session.Expired() {
		return nil, apperr.NotFound("Session")
	}

	return session, nil
}

/*
Delete removes a cached session.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (cache *RedisSessionCache) Delete(context context.Context, token string) error {
	key := fmt.Sprintf("auth:session:%s", token)

	if err := cache.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_session_cache_delete_failed: %w", err)
	}

	return nil
}
