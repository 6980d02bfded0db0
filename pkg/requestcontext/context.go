// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getters live here, free of net/http dependencies, so
// services and workers can read values set by middleware (or by tests)
// without pulling in transport code.
//
// Usage in services (read values):
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey      struct{}
	requestTimeKey    struct{}
	subscriptionIDKey struct{}
	userGroupsKey     struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRequestID      = requestIDKey{}
	ContextKeyRequestTime    = requestTimeKey{}
	ContextKeySubscriptionID = subscriptionIDKey{}
	ContextKeyUserGroups     = userGroupsKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// SubscriptionID retrieves the authenticated API subscription from the
// context. For service API keys the subscription identifies the owned
// service.
func SubscriptionID(ctx context.Context) string {
	if sub, ok := ctx.Value(ContextKeySubscriptionID).(string); ok {
		return sub
	}
	return ""
}

// WithSubscriptionID injects an API subscription ID into the context.
func WithSubscriptionID(ctx context.Context, subscriptionID string) context.Context {
	return context.WithValue(ctx, ContextKeySubscriptionID, subscriptionID)
}

// UserGroups retrieves the permission groups of the authenticated caller.
func UserGroups(ctx context.Context) []string {
	if groups, ok := ctx.Value(ContextKeyUserGroups).([]string); ok {
		return groups
	}
	return nil
}

// WithUserGroups injects permission groups into the context.
func WithUserGroups(ctx context.Context, groups []string) context.Context {
	return context.WithValue(ctx, ContextKeyUserGroups, groups)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for unit tests and
// for workers that need a consistent time across a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
