// Package cache provides an optional short-TTL cache for rendered analysis
// responses, keyed by a hash of the raw request. It never stores anything the
// response does not already contain and is disabled by default.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"vera-api/internal/common/config"

	"github.com/redis/go-redis/v9"
)

type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg config.CacheConfig) (*ResultCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &ResultCache{
		client: rdb,
		ttl:    config.GetDuration(cfg.TTL),
	}, nil
}

// NewWithClient wraps an existing redis client (used by tests with miniredis).
func NewWithClient(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Key derives the cache key from the endpoint and the raw request body.
func Key(endpoint string, body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf("vera:analysis:%s:%s", endpoint, hex.EncodeToString(sum[:]))
}

func (c *ResultCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Get returns the cached response body for key, or ok=false on miss or error.
// Cache failures degrade to a miss; they never fail the request.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *ResultCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

func (c *ResultCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
