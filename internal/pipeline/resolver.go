package pipeline

import (
	"sync"

	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/couchcryptid/county-risk-map/internal/observability"
)

// CachedResolver memoizes county resolution per place text. Observers reuse
// the same place_guess strings heavily, and the scan walks all 67 counties.
type CachedResolver struct {
	inner   domain.RegionResolver
	cache   *lruCache[resolution]
	metrics *observability.Metrics
}

type resolution struct {
	county string
	ok     bool
}

// NewCachedResolver wraps inner with an LRU cache of maxEntries places.
func NewCachedResolver(inner domain.RegionResolver, maxEntries int, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   newLRUCache[resolution](maxEntries),
		metrics: metrics,
	}
}

// ResolveRegion implements domain.RegionResolver. Misses are cached too:
// resolution is deterministic, so an unmatched place stays unmatched.
func (c *CachedResolver) ResolveRegion(place string) (string, bool) {
	if r, ok := c.cache.get(place); ok {
		c.metrics.ResolverCache.WithLabelValues("hit").Inc()
		return r.county, r.ok
	}
	c.metrics.ResolverCache.WithLabelValues("miss").Inc()
	county, ok := c.inner.ResolveRegion(place)
	c.cache.put(place, resolution{county: county, ok: ok})
	return county, ok
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
