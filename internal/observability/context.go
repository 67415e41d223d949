package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// DetachTraceContext creates a new context.Background() that carries the
// span context and request ID from the original request, without
// inheriting its cancellation. The websocket handler uses it for work that
// outlives a single frame.
func DetachTraceContext(ctx context.Context) context.Context {
	base := context.Background()
	if id := RequestID(ctx); id != "" {
		base = WithRequestID(base, id)
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return base
	}
	return trace.ContextWithRemoteSpanContext(base, sc)
}
