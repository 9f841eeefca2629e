package sqlmodel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bluele/gcache"
)

// Cache is the interface for caching query results.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies a cached query result.
type CacheKey struct {
	Table     string
	Operation string
	Query     string
	Args      []any
}

// String returns the string representation of the cache key. Keys of the
// same table share the TablePrefix.
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString(TablePrefix(k.Table))
	b.WriteString(k.Operation)
	b.WriteByte(':')
	b.WriteString(k.Query)
	for _, a := range k.Args {
		fmt.Fprintf(&b, ":%T=%v", a, a)
	}
	return b.String()
}

// TablePrefix returns the prefix of every cache key of the table.
func TablePrefix(table string) string {
	return table + ":"
}

// DefaultMemoryCacheSize is the capacity of a MemoryCache created with a
// non-positive size.
const DefaultMemoryCacheSize = 10000

// MemoryCache is an in-process LRU Cache. The least recently used entries
// are evicted once it holds size entries.
type MemoryCache struct {
	lru gcache.Cache
}

// NewMemoryCache returns an empty in-process cache holding at most size
// entries.
func NewMemoryCache(size int) *MemoryCache {
	return newMemoryCache(size, gcache.NewRealClock())
}

func newMemoryCache(size int, clock gcache.Clock) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	return &MemoryCache{lru: gcache.New(size).LRU().Clock(clock).Build()}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, err := c.lru.Get(key)
	switch {
	case errors.Is(err, gcache.KeyNotFoundError):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return v.([]byte), nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl > 0 {
		return c.lru.SetWithExpire(key, value, ttl)
	}
	return c.lru.Set(key, value)
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// DeletePrefix implements Cache.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for _, k := range c.lru.Keys(false) {
		if s, ok := k.(string); ok && strings.HasPrefix(s, prefix) {
			c.lru.Remove(k)
		}
	}
	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(context.Context) error {
	c.lru.Purge()
	return nil
}

// Len returns the number of unexpired entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len(true)
}

var _ Cache = (*MemoryCache)(nil)
