// internal/common/database/redis.go
package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/metrics"
)

const cacheKeyPrefix = "portal:v1:"

// ResponseCache stores encoded API responses.
type ResponseCache interface {
	GetJSON(ctx context.Context, endpoint, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, endpoint, key string, v interface{}) error
}

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return NewRedisFromClient(rdb, time.Duration(cfg.CacheTTL)*time.Second), nil
}

func NewRedisFromClient(rdb *redis.Client, ttl time.Duration) *RedisClient {
	return &RedisClient{Client: rdb, ttl: ttl}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// GetJSON decodes the cached value into dst. A miss returns false and no error.
func (c *RedisClient) GetJSON(ctx context.Context, endpoint, key string, dst interface{}) (bool, error) {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		metrics.CacheRequestsTotal.WithLabelValues(endpoint, "miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.CacheRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	metrics.CacheRequestsTotal.WithLabelValues(endpoint, "hit").Inc()
	return true, nil
}

// SetJSON stores v under key for the configured TTL.
func (c *RedisClient) SetJSON(ctx context.Context, endpoint, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", endpoint, err)
	}
	if err := c.Client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// CacheKey derives a stable key from the endpoint, path and query. url.Values.Encode
// sorts by parameter name, so parameter order in the request does not matter.
func CacheKey(endpoint, path string, query url.Values) string {
	sum := sha256.Sum256([]byte(path + "?" + query.Encode()))
	return cacheKeyPrefix + endpoint + ":" + hex.EncodeToString(sum[:12])
}

// NopCache never stores anything. Used when Redis is disabled.
type NopCache struct{}

func (NopCache) GetJSON(context.Context, string, string, interface{}) (bool, error) {
	return false, nil
}

func (NopCache) SetJSON(context.Context, string, string, interface{}) error {
	return nil
}
