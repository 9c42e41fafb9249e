package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cart-storage:"

type redisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis stores each key under a prefixed redis key. A zero ttl keeps values forever.
func NewRedis(client *redis.Client, ttl time.Duration) port.Storage {
	return &redisStorage{
		client: client,
		ttl:    ttl,
	}
}

func (r *redisStorage) Read(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	value, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("client.Get: %w", err)
	}

	return value, true, nil
}

func (r *redisStorage) Write(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := r.client.Set(ctx, redisKeyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}
