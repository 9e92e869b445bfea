package cache

import "sync"

// Order selects which entry counts as oldest when the cache evicts.
type Order int

const (
	// AccessOrder evicts the least recently used entry. Get refreshes.
	AccessOrder Order = iota
	// InsertionOrder evicts the first inserted entry. Get does not refresh.
	InsertionOrder
)

// Cache is a bounded map with deterministic eviction.
// A limit of 0 means unbounded; use Trim to shrink it explicitly.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	order   list[K, V]
	limit   int
	mode    Order
	onEvict func(K, V)

	hits       uint64
	misses     uint64
	evictions  uint64
	insertions uint64
}

// New creates a cache holding at most limit entries.
func New[K comparable, V any](limit int, mode Order) *Cache[K, V] {
	if limit < 0 {
		limit = 0
	}
	return &Cache[K, V]{
		entries: make(map[K]*node[K, V]),
		limit:   limit,
		mode:    mode,
	}
}

// OnEvict registers fn to run for every entry removed by the limit or Trim.
// fn runs with the cache lock held and must not call back into the cache.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and counts a hit or miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	if c.mode == AccessOrder {
		c.order.moveToFront(n)
	}
	return n.value, true
}

// Peek returns the value for key without touching statistics or order.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key, evicting old entries past the limit.
// Replacing an existing key keeps its insertion position.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs under the lock, so concurrent callers never build twice.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		c.hits++
		if c.mode == AccessOrder {
			c.order.moveToFront(n)
		}
		return n.value
	}
	c.misses++
	v := create()
	c.set(key, v)
	return v
}

// Delete removes key without calling the eviction callback.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.unlink(n)
	delete(c.entries, key)
	return true
}

// Trim evicts oldest entries until at most max remain and returns how
// many were evicted.
func (c *Cache[K, V]) Trim(max int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trim(max)
}

// RemoveOldest evicts the single oldest entry, calling the eviction
// callback. It reports false when the cache is empty.
func (c *Cache[K, V]) RemoveOldest() (K, V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.order.oldest()
	if n == nil {
		var k K
		var v V
		return k, v, false
	}
	c.evict(n)
	return n.key, n.value, true
}

// Keys returns the keys from oldest to newest.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.order.len)
	for n := c.order.tail; n != nil; n = n.prev {
		keys = append(keys, n.key)
	}
	return keys
}

// Clear drops every entry. The eviction callback is not called.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*node[K, V])
	c.order.clear()
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the entry limit.
func (c *Cache[K, V]) Capacity() int {
	return c.limit
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Len:        len(c.entries),
		Capacity:   c.limit,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		Insertions: c.insertions,
	}
}

// set stores a value. Caller must hold c.mu.
func (c *Cache[K, V]) set(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		if c.mode == AccessOrder {
			c.order.moveToFront(n)
		}
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.order.pushFront(n)
	c.insertions++
	if c.limit > 0 && len(c.entries) > c.limit {
		c.trim(c.limit)
	}
}

// trim evicts from the tail. Caller must hold c.mu.
func (c *Cache[K, V]) trim(max int) int {
	if max < 0 {
		max = 0
	}
	evicted := 0
	for len(c.entries) > max {
		n := c.order.oldest()
		if n == nil {
			break
		}
		c.evict(n)
		evicted++
	}
	return evicted
}

// evict removes n and reports it. Caller must hold c.mu.
func (c *Cache[K, V]) evict(n *node[K, V]) {
	c.order.unlink(n)
	delete(c.entries, n.key)
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(n.key, n.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the entry limit (0 = unbounded).
	Capacity int
	// Hits is the number of Get/GetOrCreate calls that found an entry.
	Hits uint64
	// Misses is the number of lookups that found nothing.
	Misses uint64
	// Evictions counts entries removed by the limit or Trim.
	Evictions uint64
	// Insertions counts new keys stored.
	Insertions uint64
}

// UsedPercent returns Len as a percentage of Capacity, or 0 when unbounded.
func (s Stats) UsedPercent() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return float64(s.Len) * 100 / float64(s.Capacity)
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
