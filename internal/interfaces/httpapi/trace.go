package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("football-live/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

const (
	attrDetailURL = attribute.Key("football_live.detail_url")
	attrSourceID  = attribute.Key("football_live.source_id")
	attrMatchID   = attribute.Key("football_live.match_id")
)

// startSpan opens a child span for handlers only. Requests without a parent
// span (health checks are filtered out of otelhttp) never start a root here.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}
