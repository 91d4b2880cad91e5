package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storefront"

// RedisStore keeps values without expiry; client state is cleared only by
// explicit logout or clear-cart.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: redisKeyPrefix,
	}
}

// ConnectRedis parses a redis:// URL and verifies the server answers PING.
func ConnectRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStore(client), nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
