package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client     *redis.Client
	prefix     string
	userPrefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:     client,
		prefix:     "session:",
		userPrefix: "user_sessions:",
	}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) userKey(userID string) string {
	return r.userPrefix + userID
}

func (r *RedisStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.UserID == "" {
		return fmt.Errorf("session: missing session_id or user_id")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	if err := r.client.Set(ctx, r.key(s.SessionID), data, ttl).Err(); err != nil {
		return err
	}

	// Index by user so an account-level sign-out can find every session.
	if err := r.client.SAdd(ctx, r.userKey(s.UserID), s.SessionID).Err(); err != nil {
		return err
	}
	return r.client.ExpireAt(ctx, r.userKey(s.UserID), s.ExpiresAt).Err()
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	s, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if s != nil {
		_ = r.client.SRem(ctx, r.userKey(s.UserID), sessionID).Err()
	}
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

// DeleteAllForUser removes every live session of the user. Used when an
// unverified sign-in must not leave a partially-authenticated session
// behind, and when an admin deletes the account.
func (r *RedisStore) DeleteAllForUser(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	for _, id := range ids {
		if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
			return err
		}
	}
	return r.client.Del(ctx, r.userKey(userID)).Err()
}
