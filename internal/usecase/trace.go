package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
)

const orchestratorSpanPrefix = "FilterOrchestrator."

var (
	usecaseTracer   = otel.Tracer("whereismatch/internal/usecase")
	usecaseNoopSpan = trace.SpanFromContext(context.Background())
)

// startOperationSpan opens a span for a user-initiated operation. Without a
// configured provider the global tracer returns a no-op span.
func startOperationSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return usecaseTracer.Start(ctx, orchestratorSpanPrefix+op, trace.WithAttributes(attrs...))
}

// startLoadSpan opens a child span only when ctx already carries one, so
// prefetches and other background loads stay untraced.
func startLoadSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, orchestratorSpanPrefix+op, trace.WithAttributes(attrs...))
}

func dimensionAttr(dim catalog.Dimension) attribute.KeyValue {
	return attribute.String("filter.dimension", string(dim))
}
