package logging

import (
	"context"

	"github.com/google/uuid"
)

// Context key types
type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
)

// ContextWithCorrelationID adds a correlation ID to the context.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext retrieves the correlation ID from the context.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDKey).(string)
	return id, ok
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from the context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// GenerateCorrelationID returns "corr_" followed by a random UUID.
func GenerateCorrelationID() string {
	return "corr_" + uuid.NewString()
}

// GenerateRequestID returns "req_" followed by a random UUID.
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// WithNewIDs stores fresh correlation and request IDs in ctx. An existing
// correlation ID is kept so one request can be followed across layers.
func WithNewIDs(ctx context.Context) context.Context {
	if _, ok := CorrelationIDFromContext(ctx); !ok {
		ctx = ContextWithCorrelationID(ctx, GenerateCorrelationID())
	}
	return ContextWithRequestID(ctx, GenerateRequestID())
}
