package gateway

import (
	"context"
	"time"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// Cache stores fetched source records keyed by source and registry key.
// Implementations must treat a zero ttl as "do not cache".
type Cache interface {
	Get(ctx context.Context, source id.SourceKind, key string) (models.Fields, bool, error)
	Set(ctx context.Context, source id.SourceKind, key string, fields models.Fields, ttl time.Duration) error
}

// NopCache disables caching entirely.
type NopCache struct{}

func (NopCache) Get(context.Context, id.SourceKind, string) (models.Fields, bool, error) {
	return nil, false, nil
}

func (NopCache) Set(context.Context, id.SourceKind, string, models.Fields, time.Duration) error {
	return nil
}

// readOnlyCache serves cached entries but never stores new ones. Preview runs
// read through it so they cannot warm the shared cache.
type readOnlyCache struct {
	inner Cache
}

func (c readOnlyCache) Get(ctx context.Context, source id.SourceKind, key string) (models.Fields, bool, error) {
	return c.inner.Get(ctx, source, key)
}

func (c readOnlyCache) Set(context.Context, id.SourceKind, string, models.Fields, time.Duration) error {
	return nil
}
