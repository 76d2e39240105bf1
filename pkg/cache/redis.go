// Package cache provides a small Redis client wrapper used by the
// market-data reference-quote cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/exchangecore/pkg/logger"
)

// Config is the connection configuration for a RedisCache.
type Config struct {
	Host        string
	Port        int
	Password    string
	DB          int
	MaxPoolSize int
	ConnTimeout int
}

// RedisCache is a thin wrapper around *redis.Client adding JSON
// (de)serialization and consistent error logging.
type RedisCache struct {
	client *redis.Client
}

// New dials Redis and pings it before returning.
func New(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.MaxPoolSize,
		ConnMaxIdleTime: time.Duration(cfg.ConnTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Info(context.Background(), "redis connected", "addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	return &RedisCache{client: client}, nil
}

// GetJSON unmarshals the value stored at key into dest. A missing key
// leaves dest untouched and returns no error.
func (rc *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := rc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error(ctx, "redis get failed", "key", key, "error", err)
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals value and stores it at key with the given expiration.
// A zero expiration means no expiry.
func (rc *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := rc.client.Set(ctx, key, data, expiration).Err(); err != nil {
		logger.Error(ctx, "redis set failed", "key", key, "error", err)
		return err
	}
	return nil
}

// Close releases the underlying connection pool.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client exposes the underlying *redis.Client for components, such as
// the HTTP rate limiter, that need direct Redis access.
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}
