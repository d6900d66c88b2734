// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware and handlers set values; services and stores read them without
// importing net/http. The request time accessor doubles as the injectable
// clock used by cache TTL checks and retry tests:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"
)

// TriggerSource records what initiated a validation run.
type TriggerSource string

const (
	TriggerAPI       TriggerSource = "API"
	TriggerUI        TriggerSource = "UI"
	TriggerBatch     TriggerSource = "BATCH"
	TriggerScheduler TriggerSource = "SCHEDULER"
)

type (
	requestIDKey     struct{}
	triggerSourceKey struct{}
	clientIPKey      struct{}
	userAgentKey     struct{}
	requestTimeKey   struct{}
)

// WithRequestID stores the request correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request correlation id, or "" when unset.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTriggerSource stores what initiated the current run.
func WithTriggerSource(ctx context.Context, src TriggerSource) context.Context {
	return context.WithValue(ctx, triggerSourceKey{}, src)
}

// GetTriggerSource returns the trigger source, defaulting to API.
func GetTriggerSource(ctx context.Context) TriggerSource {
	if v, ok := ctx.Value(triggerSourceKey{}).(TriggerSource); ok {
		return v
	}
	return TriggerAPI
}

// WithClientIP stores the caller address for audit entries.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the caller address, or "" when unset.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

// WithUserAgent stores the raw User-Agent header.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// UserAgent returns the raw User-Agent header, or "" when unset.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithTime pins the request time. Middleware sets it once per request; tests
// use it to freeze the clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
