// Package session keeps per-visitor state (the signed-in user and pending
// flash messages) in Redis, addressed by an opaque id stored in a cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned by a Store when the id is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Flash levels, used as CSS classes by the templates.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Data is the persisted content of a session.
type Data struct {
	UserID  string  `json:"user_id,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// Store persists session data by id.
type Store interface {
	Load(ctx context.Context, id string) (Data, error)
	Save(ctx context.Context, id string, data Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisStore implements Store with one JSON string per session and a TTL
// that is refreshed on every save.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(id string) string {
	return "session:" + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (Data, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Data{}, ErrNoSession
		}
		return Data{}, fmt.Errorf("session.RedisStore.Load: %w", err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("session.RedisStore.Load: decode: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session.RedisStore.Save: encode: %w", err)
	}
	if err := s.client.Set(ctx, key(id), raw, ttl).Err(); err != nil {
		return fmt.Errorf("session.RedisStore.Save: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("session.RedisStore.Delete: %w", err)
	}
	return nil
}
