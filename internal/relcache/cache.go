// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relcache caches relative lookups in memory with a time-to-live and
// a least-recently-used capacity bound.
package relcache

import (
	"container/list"
	"sync"
	"time"

	"github.com/pdiddy/kinpath/pkg/types"
)

// Defaults used when a Cache is built with zero settings.
const (
	DefaultCapacity = 2500
	DefaultTTL      = 900 * time.Second
)

// Stats counts cache activity since creation.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
}

type entry struct {
	id         types.PersonID
	record     types.RelativesRecord
	insertedAt time.Time
}

// Cache maps person ids to relative records. An entry older than the TTL
// is never returned; when the cache holds more than its capacity the least
// recently used entry is dropped. Failed lookups are cached like any other
// record. All methods are safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[types.PersonID]*list.Element
	order    *list.List // front is most recently used
	stats    Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, letting tests advance time by hand.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns an empty cache. Non-positive capacity or ttl select the
// defaults.
func New(capacity int, ttl time.Duration, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[types.PersonID]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the record for id when present and younger than the TTL, and
// marks it most recently used. Expired entries are removed.
func (c *Cache) Get(id types.PersonID) (types.RelativesRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[id]
	if !ok {
		c.stats.Misses++
		return types.RelativesRecord{}, false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.remove(el)
		c.stats.Expirations++
		c.stats.Misses++
		return types.RelativesRecord{}, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return e.record, true
}

// Put stores rec under id, refreshing both its recency and its insertion
// time, then evicts the least recently used entry while over capacity.
func (c *Cache) Put(id types.PersonID, rec types.RelativesRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[id]; ok {
		e := el.Value.(*entry)
		e.record = rec
		e.insertedAt = now
		c.order.MoveToFront(el)
		return
	}

	c.items[id] = c.order.PushFront(&entry{id: id, record: rec, insertedAt: now})
	for c.order.Len() > c.capacity {
		c.remove(c.order.Back())
		c.stats.Evictions++
	}
}

// Len returns the number of stored entries, expired ones included until
// they are touched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a copy of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Capacity returns the configured capacity.
func (c *Cache) Capacity() int { return c.capacity }

func (c *Cache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).id)
}
