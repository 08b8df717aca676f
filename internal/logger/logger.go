// Package logger provides a structured, leveled logger used throughout
// the session controller, replay engine, and supporting infrastructure.
package logger

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// LoggerInterface is the logging seam consumed by every package in
// this module; it is satisfied by *Logger and by test doubles.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, kv ...any)
	With(kv ...any) LoggerInterface
}

// Options configures optional behaviors of New; a nil Options is
// equivalent to the zero value.
type Options struct {
	// TimeFieldFormat overrides zerolog's default RFC3339 timestamp
	// format, e.g. for log aggregators expecting Unix millis.
	TimeFieldFormat string
}

// Logger is a zerolog-backed LoggerInterface implementation.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger writing to w at the given level, tagging every
// line with the given service name. opts may be nil.
func New(w io.Writer, level Level, name string, opts *Options) *Logger {
	if opts != nil && opts.TimeFieldFormat != "" {
		zerolog.TimeFieldFormat = opts.TimeFieldFormat
	}
	zl := zerolog.New(w).With().Timestamp().Str("service", name).Logger().Level(level.zerologLevel())
	return &Logger{zl: zl}
}

func (l *Logger) log(level zerolog.Level, ctx context.Context, msg string, kv []any) {
	ev := l.zl.WithLevel(level)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	if traceID := traceIDFromContext(ctx); traceID != "" {
		ev = ev.Str("trace_id", traceID)
	}
	ev.Msg(msg)
}

func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) { l.log(zerolog.DebugLevel, ctx, msg, kv) }
func (l *Logger) Info(ctx context.Context, msg string, kv ...any)  { l.log(zerolog.InfoLevel, ctx, msg, kv) }
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any)  { l.log(zerolog.WarnLevel, ctx, msg, kv) }
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) { l.log(zerolog.ErrorLevel, ctx, msg, kv) }

// With returns a LoggerInterface that attaches kv to every subsequent
// log line, used to scope a logger to a component (e.g. "component",
// "session").
func (l *Logger) With(kv ...any) LoggerInterface {
	ctx := l.zl.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, kv[i+1])
	}
	return &Logger{zl: ctx.Logger()}
}

type traceIDKey struct{}

// ContextWithTraceID attaches a trace ID to ctx for automatic
// inclusion in subsequent log lines.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func traceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceIDKey{}).(string); ok {
		return v
	}
	return ""
}
