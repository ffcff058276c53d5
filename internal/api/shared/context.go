package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

const (
	// UserNameContextKey holds the authenticated caller's user name.
	UserNameContextKey ContextKey = "userName"

	// TraceIDKey holds the request's trace ID.
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID stores a trace ID in ctx. The ID of an active OpenTelemetry span
// is reused so logs, error bodies and traces correlate; otherwise a random
// 32-character hex ID is generated.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID(ctx))
}

// GetTraceID retrieves the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

func newTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithUserName stores the authenticated caller in ctx.
func WithUserName(ctx context.Context, userName string) context.Context {
	return context.WithValue(ctx, UserNameContextKey, userName)
}

// UserNameFromContext returns the authenticated caller, if any.
func UserNameFromContext(ctx context.Context) (string, bool) {
	userName, ok := ctx.Value(UserNameContextKey).(string)
	return userName, ok && userName != ""
}
