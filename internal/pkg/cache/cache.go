package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/wanpass/wanpass/internal/pkg/env"
)

// ErrMiss is returned when a key is absent or caching is disabled. Callers
// fall back to the database either way.
var ErrMiss = errors.New("cache miss")

var (
	client  *redis.Client
	enabled bool
	ctx     = context.Background()
)

// SetupCache initializes the Redis connection when CACHE_ENABLED is set.
// A cache outage is never fatal; lookups just degrade to database reads.
func SetupCache() {
	enabled = env.GetEnv("CACHE_ENABLED", "false") == "true"
	if !enabled {
		return
	}

	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Warnf("[Cache] Could not connect to Redis, disabling cache: %v", err)
		enabled = false
		client = nil
		return
	}
	log.Info("[Cache] Connected to Redis")
}

// Set stores a value with the given expiration. No-op while disabled.
func Set(key string, value string, expiration time.Duration) {
	if !enabled {
		return
	}
	if err := client.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Warnf("[Cache] Set %s failed: %v", key, err)
	}
}

// Get retrieves a value, or ErrMiss when absent or disabled.
func Get(key string) (string, error) {
	if !enabled {
		return "", ErrMiss
	}
	val, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		log.Warnf("[Cache] Get %s failed: %v", key, err)
		return "", ErrMiss
	}
	return val, nil
}

// Delete removes a key. No-op while disabled.
func Delete(key string) {
	if !enabled {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		log.Warnf("[Cache] Delete %s failed: %v", key, err)
	}
}
