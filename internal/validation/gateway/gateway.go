package gateway

import (
	"context"
	"log/slog"
	"time"

	"securedeal/internal/validation/metrics"
	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// Result is the outcome of one source fetch. Degraded results carry the
// configured fallback status instead of fields; the engine converts them into
// degraded field results rather than failing the run.
type Result struct {
	Fields         models.Fields
	FromCache      bool
	Degraded       bool
	FallbackStatus models.Status
	Attempts       int
	Err            error
}

// Gateway is the single entry point for external data. It consults the cache
// first, retries transient provider failures on the configured backoff
// schedule, and degrades to the per-source fallback when all attempts fail.
type Gateway struct {
	providers map[id.SourceKind]Provider
	cache     Cache
	config    models.EngineConfig
	logger    *slog.Logger
	metrics   *metrics.Metrics
	sleep     func(ctx context.Context, d time.Duration) error
}

func New(providers map[id.SourceKind]Provider, cache Cache, config models.EngineConfig, logger *slog.Logger, m *metrics.Metrics) *Gateway {
	return &Gateway{
		providers: providers,
		cache:     cache,
		config:    config,
		logger:    logger,
		metrics:   m,
		sleep:     sleepContext,
	}
}

// WithSleeper overrides the backoff sleeper. Test hook.
func (g *Gateway) WithSleeper(sleep func(ctx context.Context, d time.Duration) error) *Gateway {
	g.sleep = sleep
	return g
}

// WithCache swaps the cache layer on a copy of the gateway.
func (g *Gateway) WithCache(cache Cache) *Gateway {
	clone := *g
	clone.cache = cache
	return &clone
}

// ReadOnly returns a copy of the gateway that serves cached entries but never
// stores fetched records.
func (g *Gateway) ReadOnly() *Gateway {
	return g.WithCache(readOnlyCache{inner: g.cache})
}

// Fetch returns the record for key from the given source. The returned
// Result is always usable; degraded fetches are reported, not raised.
func (g *Gateway) Fetch(ctx context.Context, source id.SourceKind, key string) Result {
	provider, ok := g.providers[source]
	if !ok {
		g.logger.Error("no provider registered", "source", source)
		return g.degrade(source, 0, nil)
	}

	if fields, hit, err := g.cache.Get(ctx, source, key); err != nil {
		g.logger.Warn("cache read failed", "source", source, "error", err)
	} else if hit {
		g.metrics.IncrementCacheLookup(source.String(), "hit")
		return Result{Fields: fields, FromCache: true}
	}
	g.metrics.IncrementCacheLookup(source.String(), "miss")

	retry := g.config.Retry
	attempts := retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		fields, err := provider.Fetch(ctx, key)
		g.metrics.ObserveSourceLatency(source.String(), time.Since(start))

		if err == nil {
			g.metrics.IncrementSourceCall(source.String(), "ok")
			if err := g.cache.Set(ctx, source, key, fields, g.config.TTLFor(source)); err != nil {
				g.logger.Warn("cache write failed", "source", source, "error", err)
			}
			return Result{Fields: fields, Attempts: attempt}
		}

		lastErr = err
		g.metrics.IncrementSourceCall(source.String(), "error")
		g.logger.Warn("source call failed",
			"source", source, "attempt", attempt, "error", err)

		if !Retryable(err) || attempt == attempts {
			break
		}
		g.metrics.IncrementRetry(source.String())
		if err := g.sleep(ctx, retry.Delay(attempt)); err != nil {
			lastErr = err
			break
		}
	}
	return g.degrade(source, attempts, lastErr)
}

func (g *Gateway) degrade(source id.SourceKind, attempts int, err error) Result {
	g.metrics.IncrementSourceCall(source.String(), "fallback")
	g.logger.Error("source degraded to fallback",
		"source", source, "fallback", g.config.FallbackFor(source), "error", err)
	return Result{
		Degraded:       true,
		FallbackStatus: g.config.FallbackFor(source),
		Attempts:       attempts,
		Err:            err,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
