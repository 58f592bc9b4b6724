package flatyml

import (
	"log/slog"

	"github.com/randalmurphal/flatyml/pkg/flatyml/observability"
)

// ScanMode selects how Parse walks the source text.
type ScanMode int

const (
	// TwoPass scans every integer assignment, then every string assignment.
	// When a key has both kinds, the string wins.
	TwoPass ScanMode = iota

	// SinglePass scans both kinds together in document order, so the last
	// assignment in the file wins regardless of kind.
	SinglePass
)

// String returns the mode name used in logs, metrics and spans.
func (m ScanMode) String() string {
	if m == SinglePass {
		return "single-pass"
	}
	return "two-pass"
}

// readerConfig holds configuration for a Reader.
type readerConfig struct {
	source  Source
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	mode    ScanMode
	maxSize int64
}

func defaultReaderConfig() readerConfig {
	return readerConfig{
		source:  FileSource{},
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		mode:    TwoPass,
	}
}

// Option configures a Reader.
type Option func(*readerConfig)

// WithSource sets how Open loads file text. Default: FileSource{}.
func WithSource(s Source) Option {
	return func(c *readerConfig) {
		if s != nil {
			c.source = s
		}
	}
}

// WithMaxSourceSize caps the text accepted by Open and OpenFrom, whatever
// the Source. Larger text fails with ErrOutOfMemory. Zero or a negative n
// means no cap.
func WithMaxSourceSize(n int64) Option {
	return func(c *readerConfig) {
		c.maxSize = n
	}
}

// WithLogger sets the logger. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *readerConfig) {
		c.logger = logger
	}
}

// WithMetrics enables metrics recording.
//
// Example:
//
//	r, err := flatyml.Open("app.yml", flatyml.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *readerConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager enables tracing.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *readerConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithScanMode selects the scan mode. Default: TwoPass.
func WithScanMode(m ScanMode) Option {
	return func(c *readerConfig) {
		c.mode = m
	}
}
