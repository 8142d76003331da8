package redis

import (
	"context"
	"time"

	"github.com/kiyo9w/Imacall-backend/pkg/config"

	"github.com/redis/go-redis/v9"
)

// activeProviderKey stores the administrator-selected AI provider so the
// selection survives restarts and is shared across replicas.
const activeProviderKey = "imacall:ai:active_provider"

type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to the address configured via REDIS_URL.
// Returns nil when no address is configured; callers treat a nil client
// as "redis disabled" and fall back to in-memory state.
func NewRedisClient() *RedisClient {
	cfg := config.Get()
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &RedisClient{client: client}
}

func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisClient) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Ping verifies connectivity, used by the health endpoint
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetActiveProvider returns the persisted active AI provider name.
// An empty string with a nil error means no selection has been stored.
func (r *RedisClient) GetActiveProvider(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, activeProviderKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetActiveProvider persists the active AI provider name
func (r *RedisClient) SetActiveProvider(ctx context.Context, name string) error {
	return r.client.Set(ctx, activeProviderKey, name, 0).Err()
}
