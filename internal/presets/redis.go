package presets

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage stores the document as a plain string key.
type RedisStorage struct {
	client redis.Cmdable
	key    string
}

func NewRedisStorage(client redis.Cmdable, key string) *RedisStorage {
	return &RedisStorage{client: client, key: key}
}

func (r *RedisStorage) Name() string { return "redis" }

func (r *RedisStorage) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return data, nil
}

func (r *RedisStorage) Write(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
