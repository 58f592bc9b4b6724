// Package observability provides structured logging, metrics, and tracing
// for flatyml readers.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds reader context to a logger. Readers log through the
// enriched logger, so every record carries the source.
//
// Example:
//
//	enriched := EnrichLogger(logger, "config.yml")
//	enriched.Info("parsing") // includes source
func EnrichLogger(logger *slog.Logger, source string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("source", source))
}

// LogReaderOpened logs a successful load of the source text.
func LogReaderOpened(logger *slog.Logger, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("reader opened", slog.Int("size_bytes", sizeBytes))
}

// LogParseStart logs the start of a parse.
func LogParseStart(logger *slog.Logger, mode string) {
	if logger == nil {
		return
	}
	logger.Debug("parse starting", slog.String("mode", mode))
}

// LogParseComplete logs successful parse completion.
func LogParseComplete(logger *slog.Logger, duration time.Duration, entries int) {
	if logger == nil {
		return
	}
	logger.Info("parse completed",
		slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
		slog.Int("entries", entries),
	)
}

// LogParseError logs parse failure.
func LogParseError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Error("parse failed", slog.String("error", err.Error()))
}

// LogDuplicateKey logs a key whose earlier value was overwritten.
func LogDuplicateKey(logger *slog.Logger, key string, line int) {
	if logger == nil {
		return
	}
	logger.Debug("duplicate key overwritten",
		slog.String("key", key),
		slog.Int("line", line),
	)
}

// LogReaderClosed logs reader teardown.
func LogReaderClosed(logger *slog.Logger, released int) {
	if logger == nil {
		return
	}
	logger.Debug("reader closed", slog.Int("entries_released", released))
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
