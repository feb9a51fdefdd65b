package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tradeview/internal/feature/watchlist/usecase"
)

var _ usecase.Storage = (*RedisStorage)(nil)

// RedisStorage implements usecase.Storage on top of Redis string keys.
// Watchlists have no expiry.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a RedisStorage. Keys are stored as "<prefix>:<key>"
// when prefix is non-empty.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) redisKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Get returns the stored value. A missing key is reported as ok=false without error.
func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key.
func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
