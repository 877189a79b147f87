package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/config"
)

// NewRedisClient builds a client from the redis config section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisProjectionCache keeps projections under a generation number.
// Invalidate bumps the generation so every older key becomes unreachable
// and expires on its own TTL.
type RedisProjectionCache struct {
	client *redis.Client
	prefix string
}

func NewRedisProjectionCache(client *redis.Client, prefix string) *RedisProjectionCache {
	if prefix == "" {
		prefix = "pansiyon:projection"
	}
	return &RedisProjectionCache{client: client, prefix: prefix}
}

func (r *RedisProjectionCache) generationKey() string {
	return r.prefix + ":gen"
}

func (r *RedisProjectionCache) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, r.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

func (r *RedisProjectionCache) key(gen int64, name string) string {
	return fmt.Sprintf("%s:%d:%s", r.prefix, gen, name)
}

func (r *RedisProjectionCache) Get(ctx context.Context, name string, dest any) (bool, int64, error) {
	if r.client == nil {
		return false, 0, fmt.Errorf("redis client is nil")
	}
	gen, err := r.generation(ctx)
	if err != nil {
		return false, 0, err
	}

	val, err := r.client.Get(ctx, r.key(gen, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, gen, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to get projection from redis: %w", err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, gen, fmt.Errorf("failed to unmarshal projection: %w", err)
	}
	return true, gen, nil
}

// Set writes under gen's key. A value for an old generation lands on a key no
// reader looks at any more, so the current-generation check only saves the write.
func (r *RedisProjectionCache) Set(ctx context.Context, name string, gen int64, value any, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	current, err := r.generation(ctx)
	if err != nil {
		return err
	}
	if current != gen {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal projection: %w", err)
	}
	if err := r.client.Set(ctx, r.key(gen, name), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set projection in redis: %w", err)
	}
	return nil
}

func (r *RedisProjectionCache) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Incr(ctx, r.generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
