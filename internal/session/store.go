// Package session implements server-side sessions keyed by a cookie-carried
// opaque ID. The browser only ever holds the ID; the user snapshot lives in
// Redis and is destroyed explicitly on logout or by TTL expiry.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"authgate/internal/cache"
	"authgate/internal/model"
)

const (
	keyPrefix = "session:"

	// TTL bounds how long an idle session survives in Redis.
	TTL = 7 * 24 * time.Hour
)

// Store defines session persistence operations.
type Store interface {
	// Create stores the user snapshot under a fresh session ID and returns it.
	Create(ctx context.Context, user model.User) (string, error)
	// Get returns the user for a session ID, or nil if the session does not exist.
	Get(ctx context.Context, id string) (*model.User, error)
	// Destroy removes a session.
	Destroy(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis as JSON payloads with a TTL.
type RedisStore struct {
	cache *cache.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(cache *cache.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

func (s *RedisStore) Create(ctx context.Context, user model.User) (string, error) {
	payload, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal session user: %w", err)
	}

	id := uuid.New().String()
	if err := s.cache.Set(ctx, keyPrefix+id, payload, TTL); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*model.User, error) {
	data, err := s.cache.Get(ctx, keyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal session user: %w", err)
	}
	return &user, nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, keyPrefix+id)
}
