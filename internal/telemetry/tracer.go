package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used by every span of this module.
const InstrumentationName = "multiparty-params"

// Tracer returns the tracer from the globally registered provider. Without
// a registered provider spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan starts a span carrying attrs.
func StartSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, operation, trace.WithAttributes(attrs...))
}

// StartResolveSpan starts the span that wraps one resolution.
func StartResolveSpan(ctx context.Context, resolutionID string, parties int) (context.Context, trace.Span) {
	return StartSpan(ctx, "resolution.resolve",
		attribute.String("resolution.id", resolutionID),
		attribute.Int("resolution.parties", parties),
	)
}

// EndSpan records the outcome on span and ends it.
func EndSpan(span trace.Span, valid bool, findings int, err error) {
	span.SetAttributes(
		attribute.Bool("resolution.valid", valid),
		attribute.Int("resolution.findings", findings),
	)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !valid:
		span.SetStatus(codes.Error, "resolution invalid")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
