package bitmap

import (
	"errors"
	"image"
	"sync"
)

// Cache caches decoded bitmaps by reference.
//
// Concurrent requests for the same uncached reference may each invoke the
// loader; only the first result is stored.
type Cache struct {
	mu    sync.Mutex
	items map[string]image.Image
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]image.Image)}
}

// Get returns a cached bitmap or loads and caches it using load.
// If the cache is nil, load is invoked directly.
func (c *Cache) Get(ref string, load func() (image.Image, error)) (image.Image, error) {
	if load == nil {
		return nil, errors.New("bitmap: loader is nil")
	}
	if c == nil {
		return load()
	}

	c.mu.Lock()
	if img := c.items[ref]; img != nil {
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	img, err := load()
	if err != nil || img == nil {
		return img, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing := c.items[ref]; existing != nil {
		return existing, nil
	}
	c.items[ref] = img
	return img, nil
}

// Len returns the number of cached bitmaps.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Purge drops every cached bitmap.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]image.Image)
	c.mu.Unlock()
}
