package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"companygraph/pkg/platform/sentinel"
)

const (
	// Redis key prefix for cached registry responses
	lookupKeyPrefix = "companygraph:lookup:"
)

// RedisStore keeps lookup responses in Redis so replicas share them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed response store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the cached body for key, or sentinel.ErrNotFound on a miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := s.client.Get(ctx, lookupKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached lookup: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return body, nil
}

// Set stores body under key with TTL using SET EX.
func (s *RedisStore) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, lookupKeyPrefix+key, body, ttl).Err(); err != nil {
		return fmt.Errorf("set cached lookup: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}
