package embedcache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memory is an in-process TTL cache.
type Memory struct {
	cache *ttlcache.Cache[string, []float32]
}

// NewMemory creates a Memory cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	c := ttlcache.New[string, []float32](
		ttlcache.WithTTL[string, []float32](ttl),
		ttlcache.WithDisableTouchOnHit[string, []float32](),
	)
	go c.Start()
	return &Memory{cache: c}
}

func (m *Memory) Get(_ context.Context, key string) ([]float32, bool) {
	item := m.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (m *Memory) Set(_ context.Context, key string, vec []float32) {
	m.cache.Set(key, vec, ttlcache.DefaultTTL)
}

// Close stops the expiration loop.
func (m *Memory) Close() {
	m.cache.Stop()
}
