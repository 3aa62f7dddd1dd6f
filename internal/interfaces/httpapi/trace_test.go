package httpapi

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestTracesHandler(t *testing.T) {
	t.Parallel()

	traced := trace.SpanFromContext(trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})))
	untraced := trace.SpanFromContext(context.Background())

	tests := []struct {
		name   string
		parent trace.Span
		span   string
		want   bool
	}{
		{name: "handler under request span", parent: traced, span: "httpapi.Handler.SavePredictions", want: true},
		{name: "middleware", parent: traced, span: "httpapi.RequireAdminKey"},
		{name: "response helper", parent: traced, span: "httpapi.writeJSON"},
		{name: "handler without request span", parent: untraced, span: "httpapi.Handler.Healthz"},
	}

	for _, tt := range tests {
		if got := tracesHandler(tt.parent, tt.span); got != tt.want {
			t.Fatalf("%s: got=%v want=%v", tt.name, got, tt.want)
		}
	}
}

func TestStartSpan_UntracedContextIsNotRecorded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.ListCompetitions")
	defer span.End()

	if got != ctx {
		t.Fatalf("expected context to be returned unchanged")
	}
	if span.IsRecording() {
		t.Fatalf("expected non-recording span for untraced request")
	}
}
