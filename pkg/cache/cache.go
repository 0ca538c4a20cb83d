// Package cache provides a thread-safe compile-if-absent cache.
//
// The compiler uses it to share one execution plan between every formula
// with the same structure. Entries are never evicted: the cache is bounded
// by the number of distinct formula shapes, not by the number of formulas.
//
// # Example
//
//	c := cache.New[*compiler.Plan]()
//	plan, err := c.GetOrCompile(key, compile)
package cache

import "sync"

// Cache maps keys to values built at most once per key from the caller's
// point of view. Safe for concurrent use by multiple goroutines.
type Cache[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{items: make(map[string]T)}
}

// Get retrieves the value stored under key.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()
	return v, ok
}

// GetOrCompile returns the value stored under key, or calls compile to build
// it and stores the result.
//
// compile runs without the lock held, so two goroutines missing the same key
// may both compile. Only the first result is stored and every caller gets
// that one. Errors are returned as-is and never stored.
func (c *Cache[T]) GetOrCompile(key string, compile func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compile()
	if err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		return existing, nil
	}
	c.items[key] = v
	return v, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Keys returns the cached keys in no particular order.
func (c *Cache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes all entries from the cache.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]T)
}
