// Package cache keeps the last successful read per (kind, date) for a TTL.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oggyno/kasir-restoran/internal/core/domain"
)

// Store is a read-through cache of fetched rows.
type Store interface {
	// Get returns the rows of an unexpired entry for exactly q.
	Get(ctx context.Context, q domain.Query) ([]domain.Row, bool)
	// Put overwrites the entry for q with a fresh timestamp.
	Put(ctx context.Context, q domain.Query, rows []domain.Row) error
	// Invalidate drops every entry of kind.
	Invalidate(ctx context.Context, kind domain.Kind) error
}

// Entry is one cached read.
type Entry struct {
	Query     domain.Query
	Rows      []domain.Row
	FetchedAt time.Time
}

// Valid reports whether the entry is younger than ttl at now.
func (e Entry) Valid(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// MemoryCache is an in-process Store. Each operation holds the lock only for
// the map access itself.
type MemoryCache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[domain.Query]Entry

	now func() time.Time
}

// NewMemoryCache creates an empty cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[domain.Query]Entry),
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get returns cached rows if within TTL. Expired entries are removed here.
func (c *MemoryCache) Get(_ context.Context, q domain.Query) ([]domain.Row, bool) {
	c.mu.RLock()
	entry, ok := c.entries[q]
	now := c.now()
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if entry.Valid(now, c.ttl) {
		return cloneRows(entry.Rows), true
	}

	c.mu.Lock()
	// A concurrent Put may have refreshed it meanwhile
	if current, ok := c.entries[q]; ok && current.FetchedAt.Equal(entry.FetchedAt) {
		delete(c.entries, q)
	}
	c.mu.Unlock()
	return nil, false
}

// Put stores rows for q.
func (c *MemoryCache) Put(_ context.Context, q domain.Query, rows []domain.Row) error {
	c.mu.Lock()
	c.entries[q] = Entry{Query: q, Rows: cloneRows(rows), FetchedAt: c.now()}
	c.mu.Unlock()
	return nil
}

// Invalidate clears every entry of kind, forcing the next fetch to hit the
// endpoint.
func (c *MemoryCache) Invalidate(_ context.Context, kind domain.Kind) error {
	c.mu.Lock()
	for q := range c.entries {
		if q.Kind == kind {
			delete(c.entries, q)
		}
	}
	c.mu.Unlock()
	return nil
}

// cloneRows copies rows so the cache never shares them with callers. Cells are
// primitives, so copying each row is deep enough.
func cloneRows(rows []domain.Row) []domain.Row {
	out := make([]domain.Row, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
