package external

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"forecastcache.app/pkg/errors"
)

// MemoryCacheProvider keeps entries in process memory. Entries do not survive a restart.
type MemoryCacheProvider struct {
	data  map[string]memoryCacheItem
	mutex sync.RWMutex
	now   func() time.Time
}

type memoryCacheItem struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCacheProvider() *MemoryCacheProvider {
	return &MemoryCacheProvider{
		data: make(map[string]memoryCacheItem),
		now:  time.Now,
	}
}

func (c *MemoryCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewCacheIOError("cache key cannot be empty", nil)
	}

	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists || c.now().After(item.expiresAt) {
		return nil, errors.NewNotFoundError("cache miss")
	}

	return item.data, nil
}

func (c *MemoryCacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewCacheIOError("cache key cannot be empty", nil)
	}
	if value == nil {
		return errors.NewCacheIOError("cache value cannot be nil", nil)
	}
	if ttl <= 0 {
		return errors.NewCacheIOError("cache TTL must be positive", nil)
	}

	// callers may reuse the slice
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = memoryCacheItem{
		data:      stored,
		expiresAt: c.now().Add(ttl),
	}

	return nil
}

func (c *MemoryCacheProvider) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewCacheIOError("cache key cannot be empty", nil)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Keys returns the unexpired keys with the given prefix, sorted.
func (c *MemoryCacheProvider) Keys(ctx context.Context, prefix string) ([]string, error) {
	now := c.now()

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]string, 0, len(c.data))
	for key, item := range c.data {
		if strings.HasPrefix(key, prefix) && !now.After(item.expiresAt) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *MemoryCacheProvider) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]memoryCacheItem)
	return nil
}
