package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Uses the global OTel tracer provider.
var tracer = otel.Tracer("flatyml")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartParseSpan starts a span covering a whole parse.
	StartParseSpan(ctx context.Context, source, mode string) (context.Context, trace.Span)

	// StartPassSpan starts a child span for one scan pass ("int", "string" or "line").
	StartPassSpan(ctx context.Context, pass string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// Configure the global tracer provider before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartParseSpan(ctx context.Context, source, mode string) (context.Context, trace.Span) {
	return StartParseSpan(ctx, source, mode)
}

func (m *otelSpanManager) StartPassSpan(ctx context.Context, pass string) (context.Context, trace.Span) {
	return StartPassSpan(ctx, pass)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartParseSpan starts a parse span using the global tracer.
func StartParseSpan(ctx context.Context, source, mode string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flatyml.parse",
		trace.WithAttributes(
			attribute.String("source", source),
			attribute.String("parse.mode", mode),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartPassSpan starts a scan pass span using the global tracer.
func StartPassSpan(ctx context.Context, pass string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flatyml.pass."+pass,
		trace.WithAttributes(
			attribute.String("pass", pass),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
