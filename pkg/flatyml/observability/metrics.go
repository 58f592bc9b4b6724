package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records reader metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordParse records a parse with its duration, entry count and error status.
	RecordParse(ctx context.Context, mode string, duration time.Duration, entries int, err error)

	// RecordLookup records a key lookup and whether it hit.
	RecordLookup(ctx context.Context, hit bool)

	// RecordSourceSize records the size of a loaded source in bytes.
	RecordSourceSize(ctx context.Context, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	parses       metric.Int64Counter
	parseLatency metric.Float64Histogram
	parseErrors  metric.Int64Counter
	entries      metric.Int64Histogram
	lookups      metric.Int64Counter
	sourceSize   metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flatyml")

	parses, err := meter.Int64Counter("flatyml.parse.count",
		metric.WithDescription("Number of parses"),
	)
	if err != nil {
		return nil, err
	}

	parseLatency, err := meter.Float64Histogram("flatyml.parse.latency_ms",
		metric.WithDescription("Parse latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter("flatyml.parse.errors",
		metric.WithDescription("Number of failed parses"),
	)
	if err != nil {
		return nil, err
	}

	entries, err := meter.Int64Histogram("flatyml.parse.entries",
		metric.WithDescription("Distinct keys indexed per parse"),
	)
	if err != nil {
		return nil, err
	}

	lookups, err := meter.Int64Counter("flatyml.lookup.count",
		metric.WithDescription("Number of key lookups"),
	)
	if err != nil {
		return nil, err
	}

	sourceSize, err := meter.Int64Histogram("flatyml.source.size_bytes",
		metric.WithDescription("Loaded source size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		parses:       parses,
		parseLatency: parseLatency,
		parseErrors:  parseErrors,
		entries:      entries,
		lookups:      lookups,
		sourceSize:   sourceSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordParse records a parse.
func (m *otelMetrics) RecordParse(ctx context.Context, mode string, duration time.Duration, entries int, err error) {
	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("success", err == nil),
	)

	m.parses.Add(ctx, 1, attrs)
	m.parseLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.parseErrors.Add(ctx, 1, attrs)
		return
	}
	m.entries.Record(ctx, int64(entries), attrs)
}

// RecordLookup records a lookup.
func (m *otelMetrics) RecordLookup(ctx context.Context, hit bool) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}

// RecordSourceSize records a loaded source size.
func (m *otelMetrics) RecordSourceSize(ctx context.Context, sizeBytes int64) {
	m.sourceSize.Record(ctx, sizeBytes)
}
