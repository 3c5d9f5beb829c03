// Package cache provides a bounded, recency-ordered in-memory cache
// used as a read/write-through shadow of the store. It is never the
// source of truth: entries may be dropped at any time and callers must
// be prepared to fall back to the store.
package cache

import (
	"container/list"
	"sync"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
)

// DefaultCapacity is the cache size used when none is configured.
const DefaultCapacity = 25

type entry struct {
	key   string
	funko model.Funko
}

// FunkoCache is a fixed-capacity LRU cache keyed by Funko id.
// Get and Put promote the touched key to most-recently-used; when a
// Put overflows the capacity, the single least-recently-used entry is
// evicted. All operations are safe for concurrent use.
type FunkoCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
}

// New creates a FunkoCache with the given capacity. A capacity below 1
// falls back to DefaultCapacity.
func New(capacity int) *FunkoCache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &FunkoCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached Funko for key, promoting it to most recently
// used. The second return value reports whether the key was present.
func (c *FunkoCache) Get(key string) (model.Funko, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return model.Funko{}, false
	}

	c.order.MoveToFront(el)
	return el.Value.(*entry).funko, true
}

// Put inserts or overwrites the entry for key and promotes it. When
// the insert would exceed the capacity, the least-recently-used entry
// is evicted.
func (c *FunkoCache) Put(key string, f model.Funko) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).funko = f
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	c.items[key] = c.order.PushFront(&entry{key: key, funko: f})
}

// Remove invalidates the entry for key, if present. Removing an absent
// key is a no-op.
func (c *FunkoCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Len returns the number of cached entries.
func (c *FunkoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// evictOldest drops the least-recently-used entry.
// Callers must hold c.mu.
func (c *FunkoCache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	e := c.order.Remove(oldest).(*entry)
	delete(c.items, e.key)
}
