// Package cache fronts a repository's read path with a short-lived
// in-memory snapshot plus a longer-lived persisted copy in the kv table.
// Measurements are the heavy listing on site, so their reads go through
// here; any local write to the entity invalidates both layers.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmarques/obrafield/internal/client/kv"
	"github.com/dmarques/obrafield/internal/logging"
)

// snapshot is the persisted shape: data plus the moment it was taken.
type snapshot[T any] struct {
	Data      []T       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Cache holds one entity's listing under a fixed kv key.
type Cache[T any] struct {
	key string
	ttl time.Duration
	kv  kv.Repository
	log logging.Logger
	now func() time.Time

	mu  sync.Mutex
	mem *snapshot[T]
}

func New[T any](key string, ttl time.Duration, store kv.Repository, log logging.Logger) *Cache[T] {
	return &Cache[T]{key: key, ttl: ttl, kv: store, log: log, now: time.Now}
}

// Get returns the cached listing when it is still inside the freshness
// window: memory first, then the persisted copy (which is promoted back to
// memory on a hit).
func (c *Cache[T]) Get(ctx context.Context) ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mem != nil && c.fresh(c.mem) {
		return c.mem.Data, true
	}

	raw, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if c.log != nil {
			c.log.Warn(ctx, "persisted cache read failed", "key", c.key, "error", err)
		}
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var snap snapshot[T]
	if err := json.Unmarshal(raw, &snap); err != nil {
		if c.log != nil {
			c.log.Warn(ctx, "persisted cache corrupt, ignoring", "key", c.key, "error", err)
		}
		return nil, false
	}
	if !c.fresh(&snap) {
		return nil, false
	}
	c.mem = &snap
	return snap.Data, true
}

// Put stores a fresh listing in both layers. A persistence failure is logged
// and tolerated; the memory layer still serves until it expires.
func (c *Cache[T]) Put(ctx context.Context, data []T) {
	snap := &snapshot[T]{Data: data, Timestamp: c.now()}

	c.mu.Lock()
	c.mem = snap
	c.mu.Unlock()

	raw, err := json.Marshal(snap)
	if err == nil {
		err = c.kv.Set(ctx, c.key, raw)
	}
	if err != nil && c.log != nil {
		c.log.Warn(ctx, "persisted cache write failed", "key", c.key, "error", err)
	}
}

// Invalidate drops both layers; called on every local write to the entity.
func (c *Cache[T]) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.mem = nil
	c.mu.Unlock()

	if err := c.kv.Delete(ctx, c.key); err != nil && c.log != nil {
		c.log.Warn(ctx, "persisted cache invalidation failed", "key", c.key, "error", err)
	}
}

func (c *Cache[T]) fresh(snap *snapshot[T]) bool {
	return c.now().Sub(snap.Timestamp) < c.ttl
}
