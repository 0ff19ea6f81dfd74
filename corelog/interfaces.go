// Package corelog provides the logging and telemetry interfaces shared by
// every webrunner package, plus a production-ready default implementation.
package corelog

import "context"

// Logger is the minimal structured logging interface used throughout the
// engine. Fields are passed as a flat map rather than variadic key/value
// pairs to keep call sites uniform across packages.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})

	InfoWithContext(ctx context.Context, msg string, fields map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, fields map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{})
	DebugWithContext(ctx context.Context, msg string, fields map[string]interface{})
}

// ComponentLogger extends Logger with the ability to scope a sub-logger to
// a named component (e.g. "engine/step", "engine/dynamic") so structured
// logs can be filtered by subsystem.
type ComponentLogger interface {
	Logger
	WithComponent(component string) Logger
}

// Span represents a single unit of work for tracing purposes.
type Span interface {
	End()
	SetAttribute(key string, value interface{})
	RecordError(err error)
}

// Telemetry is the optional tracing/metrics collaborator. The engine never
// requires a concrete tracing backend; callers wire one in via this
// interface if they want spans around provider calls.
type Telemetry interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	RecordMetric(name string, value float64, labels map[string]string)
}

// NoOpLogger discards everything. It is not used by default: with no
// logger configured the engine builds a ProductionLogger.
type NoOpLogger struct{}

func (NoOpLogger) Info(string, map[string]interface{})                              {}
func (NoOpLogger) Warn(string, map[string]interface{})                              {}
func (NoOpLogger) Error(string, map[string]interface{})                             {}
func (NoOpLogger) Debug(string, map[string]interface{})                             {}
func (NoOpLogger) InfoWithContext(context.Context, string, map[string]interface{})  {}
func (NoOpLogger) WarnWithContext(context.Context, string, map[string]interface{})  {}
func (NoOpLogger) ErrorWithContext(context.Context, string, map[string]interface{}) {}
func (NoOpLogger) DebugWithContext(context.Context, string, map[string]interface{}) {}

// NoOpTelemetry discards spans and metrics.
type NoOpTelemetry struct{}

func (NoOpTelemetry) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noOpSpan{}
}
func (NoOpTelemetry) RecordMetric(string, float64, map[string]string) {}

type noOpSpan struct{}

func (noOpSpan) End()                                  {}
func (noOpSpan) SetAttribute(string, interface{})      {}
func (noOpSpan) RecordError(error)                     {}
