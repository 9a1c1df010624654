// Package cache provides the Redis-backed user cache and rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default pool sizing when Options fields are left zero.
const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
)

// Options control connection pool sizing. Zero values fall back to
// the defaults above.
type Options struct {
	PoolSize     int
	MinIdleConns int
}

// Cache wraps a Redis client with user-cache and rate-limit operations.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at redisURL and verifies the connection.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = opts.PoolSize
	if opt.PoolSize <= 0 {
		opt.PoolSize = defaultPoolSize
	}
	opt.MinIdleConns = opts.MinIdleConns
	if opt.MinIdleConns <= 0 {
		opt.MinIdleConns = defaultMinIdleConns
	}
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the underlying Redis client for test cleanup.
// Application code goes through the Cache methods.
func (c *Cache) Client() *redis.Client {
	return c.client
}
