package replay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces lock records in a shared redis instance.
const keyPrefix = "replay:"

// RedisStore implements Store on top of redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new store backed by the given redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value for key and whether it exists.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("replay store get: %w", err)
	}
	return value, true, nil
}

// Put writes value under key with the given expiration.
func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("replay store put: %w", err)
	}
	return nil
}

// PutIfAbsent writes value under key only if the key does not already
// exist, using redis SETNX so the check and the write are one atomic
// operation.
func (s *RedisStore) PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, keyPrefix+key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay store put-if-absent: %w", err)
	}
	return acquired, nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("replay store delete: %w", err)
	}
	return nil
}
