package pattern

import (
	"container/list"
	"slices"
	"sync"
)

// DefaultCacheSize is used when NewCache is given a non-positive capacity.
const DefaultCacheSize = 256

// Cache memoizes compiled patterns in a bounded LRU.
// Compile errors are not cached.
type Cache struct {
	capacity int
	mu       sync.Mutex

	entries map[cacheKey]*list.Element
	order   *list.List // front is most recently used

	hits, misses uint64
}

type cacheKey struct {
	dialect Dialect
	pattern string
}

type cacheEntry struct {
	key    cacheKey
	tokens []Token
}

// NewCache creates a cache holding at most capacity compiled patterns.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey]*list.Element),
		order:    list.New(),
	}
}

// Compile returns the tokens for pattern, compiling it on a miss.
// The returned slice is a copy and may be modified by the caller.
func (c *Cache) Compile(pattern string, d Dialect) ([]Token, error) {
	key := cacheKey{dialect: d, pattern: pattern}

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		tokens := el.Value.(*cacheEntry).tokens
		c.mu.Unlock()
		return slices.Clone(tokens), nil
	}
	c.misses++
	c.mu.Unlock()

	tokens, err := Compile(pattern, d)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		// A concurrent caller compiled it first.
		c.order.MoveToFront(el)
		return slices.Clone(tokens), nil
	}
	for len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, tokens: tokens})
	return slices.Clone(tokens), nil
}

// CompileAuto detects the dialect of pattern and compiles it.
func (c *Cache) CompileAuto(pattern string) ([]Token, error) {
	return c.Compile(pattern, Detect(pattern))
}

// Size returns the number of cached patterns.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Capacity returns the maximum number of cached patterns.
func (c *Cache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// Resize changes the capacity, evicting the least recently used entries
// that no longer fit. A non-positive capacity means DefaultCacheSize.
func (c *Cache) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*list.Element)
	c.order.Init()
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *Cache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.entries, oldest.Value.(*cacheEntry).key)
}
