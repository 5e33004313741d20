// Package cache is a small JSON cache over Redis with namespace versioning:
// bumping a namespace version orphans every key written under the old one,
// so a write path can invalidate a whole family of keys with one INCR.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fitcoach:"

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func New(addr string, ttl time.Duration) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: client, ttl: ttl}
}

func versionKey(namespace string) string {
	return keyPrefix + namespace + ":version"
}

// Version returns the current version of namespace; a missing key is version 0.
func (s *Store) Version(ctx context.Context, namespace string) (int64, error) {
	v, err := s.redis.Get(ctx, versionKey(namespace)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (s *Store) Bump(ctx context.Context, namespace string) error {
	return s.redis.Incr(ctx, versionKey(namespace)).Err()
}

func Key(namespace string, version int64, id string) string {
	return fmt.Sprintf("%s%s:v%d:%s", keyPrefix, namespace, version, id)
}

// GetJSON decodes the value at key into dest. ok is false on a miss.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, s.ttl).Err()
}

func (s *Store) Close() error {
	return s.redis.Close()
}
