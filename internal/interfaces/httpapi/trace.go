package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("prediction-league/internal/interfaces/httpapi")

// startSpan opens a child span for handler entry points only. Middleware and
// response helpers share the request span, and requests without an incoming
// span (probes, local curl) are left untraced.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	current := trace.SpanFromContext(ctx)
	if !tracesHandler(current, name) {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func tracesHandler(parent trace.Span, name string) bool {
	return parent.SpanContext().IsValid() && strings.HasPrefix(name, handlerSpanPrefix)
}
