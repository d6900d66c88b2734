package gateway

import (
	"context"
	"sync"
	"time"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
	"securedeal/pkg/requestcontext"
)

type memoryEntry struct {
	fields    models.Fields
	expiresAt time.Time
}

// MemoryCache is a TTL map for single-node deployments and tests. Expiry is
// judged against the request time from the context, so a request pinned with
// requestcontext.WithTime sees a consistent cutoff.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func(ctx context.Context) time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     requestcontext.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = func(context.Context) time.Time { return now() }
	return c
}

func cacheKey(source id.SourceKind, key string) string {
	return string(source) + ":" + key
}

func (c *MemoryCache) Get(ctx context.Context, source id.SourceKind, key string) (models.Fields, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(source, key)]
	c.mu.RUnlock()
	if !ok || c.now(ctx).After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.fields, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, source id.SourceKind, key string, fields models.Fields, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	c.entries[cacheKey(source, key)] = memoryEntry{fields: fields, expiresAt: c.now(ctx).Add(ttl)}
	c.mu.Unlock()
	return nil
}
