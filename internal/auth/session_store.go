package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blogapp/internal/cache"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps the server side of login sessions.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	// Lookup returns found=false for unknown or expired sessions.
	Lookup(ctx context.Context, sessionID string) (userID uint, found bool, err error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRecord struct {
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisSessionStore stores sessions in Redis so every server process can
// resolve every token.
type RedisSessionStore struct {
	cache *cache.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a session store backed by the cache client.
func NewRedisSessionStore(cache *cache.Client) *RedisSessionStore {
	return &RedisSessionStore{cache: cache}
}

// Save stores a session that expires after ttl.
func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error {
	payload, err := json.Marshal(sessionRecord{UserID: userID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+sessionID, payload, ttl)
}

// Lookup resolves a session id to its user.
func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (uint, bool, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		return 0, false, err
	}
	if data == nil {
		return 0, false, nil
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return rec.UserID, true, nil
}

// Delete removes a session. Missing sessions are ignored.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+sessionID)
}
