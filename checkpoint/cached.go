package checkpoint

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cached wraps a Store with a read-through cache. Concurrent loads of the
// same topic share one call to the inner store. Saves write through.
type Cached struct {
	inner Store
	group singleflight.Group

	mu      sync.RWMutex
	offsets map[string]int64
}

// NewCached creates a caching wrapper around inner.
func NewCached(inner Store) *Cached {
	return &Cached{inner: inner, offsets: make(map[string]int64)}
}

// Load returns the cached offset or loads it from the inner store.
func (c *Cached) Load(ctx context.Context, topic string) (int64, error) {
	c.mu.RLock()
	off, ok := c.offsets[topic]
	c.mu.RUnlock()
	if ok {
		return off, nil
	}

	v, err, _ := c.group.Do(topic, func() (any, error) {
		off, err := c.inner.Load(ctx, topic)
		if err != nil {
			return int64(0), err
		}
		c.mu.Lock()
		c.offsets[topic] = off
		c.mu.Unlock()
		return off, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Save writes the offset to the inner store and, on success, the cache.
// Saving the offset that is already cached is a no-op.
func (c *Cached) Save(ctx context.Context, topic string, offset int64) error {
	c.mu.RLock()
	cur, ok := c.offsets[topic]
	c.mu.RUnlock()
	if ok && cur == offset {
		return nil
	}
	if err := c.inner.Save(ctx, topic, offset); err != nil {
		return err
	}
	c.mu.Lock()
	c.offsets[topic] = offset
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached offset for topic.
func (c *Cached) Invalidate(topic string) {
	c.mu.Lock()
	delete(c.offsets, topic)
	c.mu.Unlock()
	c.group.Forget(topic)
}

var _ Store = (*Cached)(nil)
