package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisTokenStore persists the token in Redis, for environments where
// the client runs on more than one host or survives its filesystem.
type RedisTokenStore struct {
	client *redis.Client
	key    string
}

// NewRedisTokenStore connects to Redis and verifies the connection
// with a ping before returning.
func NewRedisTokenStore(redisURL, key string) (*RedisTokenStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTokenStore{client: client, key: key}, nil
}

func (r *RedisTokenStore) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (r *RedisTokenStore) Save(ctx context.Context, token string) error {
	// No TTL: the token lives until logout or server-side rejection.
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (r *RedisTokenStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

func (r *RedisTokenStore) Close() error {
	return r.client.Close()
}
