package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oggyno/kasir-restoran/internal/core/domain"
	redisclient "github.com/oggyno/kasir-restoran/internal/infra/redis"
)

type redisEntry struct {
	Rows      []domain.Row `json:"rows"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// RedisCache is a Store shared between processes. Redis failures are logged
// and reported as misses so a fetch never fails because of the cache.
type RedisCache struct {
	client *redisclient.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisCache creates a cache backed by client whose entries live for ttl.
func NewRedisCache(client *redisclient.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for the TTL check.
func (c *RedisCache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns cached rows if within TTL.
func (c *RedisCache) Get(ctx context.Context, q domain.Query) ([]domain.Row, bool) {
	payload, ok, err := c.client.GetRows(ctx, q)
	if err != nil {
		slog.Warn("Redis cache read failed", "query", q.String(), "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry redisEntry
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&entry); err != nil {
		slog.Warn("Dropping undecodable cache entry", "query", q.String(), "error", err)
		_ = c.client.DeleteRows(ctx, q)
		return nil, false
	}

	e := Entry{Query: q, Rows: entry.Rows, FetchedAt: entry.FetchedAt}
	if !e.Valid(c.now(), c.ttl) {
		if err := c.client.DeleteRows(ctx, q); err != nil {
			slog.Debug("Failed to drop expired cache entry", "query", q.String(), "error", err)
		}
		return nil, false
	}
	return e.Rows, true
}

// Put stores rows for q. The Redis key also expires after the TTL.
func (c *RedisCache) Put(ctx context.Context, q domain.Query, rows []domain.Row) error {
	if c.ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(redisEntry{Rows: rows, FetchedAt: c.now()})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.client.SetRows(ctx, q, payload, c.ttl)
}

// Invalidate removes every entry of kind.
func (c *RedisCache) Invalidate(ctx context.Context, kind domain.Kind) error {
	n, err := c.client.DeleteKind(ctx, kind)
	if err != nil {
		return err
	}
	slog.Debug("Invalidated cache", "kind", kind, "keys", n)
	return nil
}
