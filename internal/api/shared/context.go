package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ContextKey is the key type for context values set by this package.
type ContextKey string

// Context keys for request-scoped values.
const (
	// OwnerIDContextKey carries the caller's openid, set by the openid
	// middleware from the trusted platform header.
	OwnerIDContextKey ContextKey = "ownerID"

	// TraceIDKey carries the request trace id.
	TraceIDKey ContextKey = "traceID"

	// traceIDLength is the number of random bytes behind a trace id.
	traceIDLength = 16
)

// SetTraceID adds a freshly generated trace id to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace id from the context, or "" when absent.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SetOwnerID adds the caller's openid to the context.
func SetOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerIDContextKey, ownerID)
}

// GetOwnerID retrieves the caller's openid from the context, or "" when the
// request carried no identity.
func GetOwnerID(ctx context.Context) string {
	ownerID, ok := ctx.Value(OwnerIDContextKey).(string)
	if !ok {
		return ""
	}
	return ownerID
}

// generateTraceID creates a random 32-character hex trace id. On the
// unlikely failure of the random source it falls back to a timestamp-based
// id rather than a static value.
func generateTraceID() string {
	b := make([]byte, traceIDLength)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%032x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
