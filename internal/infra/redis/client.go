package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyno/kasir-restoran/internal/core/domain"
)

// Client wraps Redis operations for the shared row cache.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func rowsKey(q domain.Query) string {
	return fmt.Sprintf("kasir:rows:%s:%s", q.Kind, q.Date)
}

func kindPattern(kind domain.Kind) string {
	return fmt.Sprintf("kasir:rows:%s:*", kind)
}

// GetRows returns the raw cached payload for a query.
func (c *Client) GetRows(ctx context.Context, q domain.Query) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, rowsKey(q)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get failed: %w", err)
	}
	return val, true, nil
}

// SetRows stores the payload for a query, overwriting any previous one.
func (c *Client) SetRows(ctx context.Context, q domain.Query, payload []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, rowsKey(q), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// DeleteRows removes the payload of a single query.
func (c *Client) DeleteRows(ctx context.Context, q domain.Query) error {
	return c.rdb.Del(ctx, rowsKey(q)).Err()
}

// DeleteKind removes every cached query of a kind and reports how many keys went.
func (c *Client) DeleteKind(ctx context.Context, kind domain.Kind) (int, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, kindPattern(kind), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan failed: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("del failed: %w", err)
	}
	return int(n), nil
}

// Ping reports whether Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
