package transcript

import (
	"fmt"
	"sync"
)

// Factory builds a Transcriber for one model size
type Factory func(size ModelSize) (Transcriber, error)

// Cache lazily builds one Transcriber per model size and reuses it for the
// life of the process. A failed build is not cached.
type Cache struct {
	mu      sync.Mutex
	factory Factory
	entries map[ModelSize]Transcriber
}

// NewCache creates an empty cache around factory
func NewCache(factory Factory) *Cache {
	return &Cache{
		factory: factory,
		entries: make(map[ModelSize]Transcriber),
	}
}

// Get returns the Transcriber for size, building it on first use
func (c *Cache) Get(size ModelSize) (Transcriber, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.entries[size]; ok {
		return t, nil
	}

	t, err := c.factory(size)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s model: %w", size, err)
	}
	c.entries[size] = t
	return t, nil
}

