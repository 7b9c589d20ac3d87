package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openaudit/openaudit/internal/domain"
)

// Session records live under "u:<token>" and hold only the bound user id.
// The TTL is the sliding session expiry; callers refresh it on resolve.
const sessionKeyPrefix = "u:"

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// CreateSession binds a token to a user id. The record is fully written
// before the caller invalidates any previous token, so a failure here
// leaves no partial session behind.
func (s *Store) CreateSession(ctx context.Context, token string, userId domain.UserId, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(token), strconv.FormatInt(userId, 10), ttl).Err()
}

// GetSession resolves a token to its user id. The second return value is
// false when no session exists for the token.
func (s *Store) GetSession(ctx context.Context, token string) (domain.UserId, bool, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	userId, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Unparseable record: treat as absent but surface the corruption
		return 0, false, err
	}
	return userId, true, nil
}

// TouchSession refreshes the sliding expiry. Missing sessions are a no-op.
func (s *Store) TouchSession(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Expire(ctx, sessionKey(token), ttl).Err()
}

// DeleteSession destroys a session. Deleting an absent session is not an
// error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
