package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/pkg/database"
)

// RedisStorage implements Storage using Redis strings.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage creates a Redis-backed storage. A zero ttl stores slots
// without expiry; otherwise every write refreshes the expiry.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a slot value from Redis.
func (r *RedisStorage) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	ctx, end := database.TraceStorage(ctx, database.SystemRedis, "GetSlot", "GET")
	defer func() { end(err) }()

	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get slot: %w", err)
	}

	return value, true, nil
}

// Set writes a slot value to Redis with the configured TTL.
func (r *RedisStorage) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceStorage(ctx, database.SystemRedis, "SetSlot", "SET")
	defer func() { end(err) }()

	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set slot: %w", err)
	}

	return nil
}

// Ping checks the Redis connection.
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
