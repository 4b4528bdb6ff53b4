package trigger

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheCapacity = 1024

// Cache is a bounded read-through decode cache over the Store. Entries
// are keyed by trigger id; a secondary pattern index supports
// pattern-keyed lookups without assuming pattern uniqueness. Deletion
// goes through the cache so the index and the store stay in step.
type Cache struct {
	store Store

	mu       sync.Mutex
	entries  *lru.Cache[string, Trigger]
	index    map[string]map[string]struct{}
	complete map[string]bool
}

func NewCache(store Store, capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	c := &Cache{
		store:    store,
		index:    map[string]map[string]struct{}{},
		complete: map[string]bool{},
	}
	// The evict callback runs synchronously inside Add/Remove, which
	// are only ever called with c.mu held. It must not lock.
	entries, err := lru.NewWithEvict(capacity, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("trigger cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

func (c *Cache) onEvict(id string, trig Trigger) {
	ids := c.index[trig.Pattern]
	if ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(c.index, trig.Pattern)
		}
	}
	delete(c.complete, trig.Pattern)
}

// Resolve decodes a store row, memoizing the result by trigger id.
// Triggers are immutable once created, so a cached entry never goes
// stale short of deletion.
func (c *Cache) Resolve(row Row) (Trigger, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocked(row)
}

func (c *Cache) resolveLocked(row Row) (Trigger, error) {
	if trig, ok := c.entries.Get(row.ID); ok {
		return trig, nil
	}
	trig, err := Decode(row)
	if err != nil {
		return Trigger{}, err
	}
	c.entries.Add(row.ID, trig)
	ids := c.index[trig.Pattern]
	if ids == nil {
		ids = map[string]struct{}{}
		c.index[trig.Pattern] = ids
	}
	ids[row.ID] = struct{}{}
	return trig, nil
}

// GetByPattern returns every trigger sharing the pattern, reading
// through to the store unless a complete set is already cached.
func (c *Cache) GetByPattern(ctx context.Context, pattern string) ([]Trigger, error) {
	if c.store == nil {
		return nil, fmt.Errorf("trigger cache not configured")
	}
	c.mu.Lock()
	if c.complete[pattern] {
		ids := c.index[pattern]
		items := make([]Trigger, 0, len(ids))
		for id := range ids {
			if trig, ok := c.entries.Get(id); ok {
				items = append(items, trig)
			}
		}
		c.mu.Unlock()
		return items, nil
	}
	c.mu.Unlock()

	rows, err := c.store.GetByPattern(ctx, pattern)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Mark complete before inserting: an eviction of any entry for
	// this pattern during the inserts clears the mark again.
	c.complete[pattern] = true
	items := make([]Trigger, 0, len(rows))
	for _, row := range rows {
		trig, err := c.resolveLocked(row)
		if err != nil {
			return nil, err
		}
		items = append(items, trig)
	}
	return items, nil
}

// Invalidate drops every cached entry for the pattern. Unknown
// patterns are a no-op.
func (c *Cache) Invalidate(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := c.index[pattern]
	for id := range ids {
		c.entries.Remove(id)
	}
	delete(c.complete, pattern)
}

// Delete removes the pattern's triggers from the store and evicts the
// cache entries with it. This is the only mutation path the cache
// observes.
func (c *Cache) Delete(ctx context.Context, pattern string) (int64, error) {
	if c.store == nil {
		return 0, fmt.Errorf("trigger cache not configured")
	}
	deleted, err := c.store.DeleteByPattern(ctx, pattern)
	if err != nil {
		return 0, err
	}
	c.Invalidate(pattern)
	return deleted, nil
}

// Len reports the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
