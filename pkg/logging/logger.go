package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// LevelTrace is below debug and only enabled with -vv
const LevelTrace = slog.LevelDebug - 4

type contextKey string

// Keys double as attribute names so the compact handler can shorten them
const (
	requestIDKey = "requestID"
	caseIDKey    = "caseID"
)

var (
	mu      sync.RWMutex
	jsonOut bool
	logger  *slog.Logger
)

var out io.Writer = os.Stdout

var level = new(slog.LevelVar)

func init() {
	level.Set(slog.LevelInfo)
	rebuild()
}

func rebuild() {
	opts := &slog.HandlerOptions{Level: level}
	if jsonOut {
		logger = slog.New(slog.NewJSONHandler(out, opts))
	} else {
		logger = slog.New(NewCompactHandler(out, opts))
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLevel changes the minimum level that is written
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Level returns the current minimum level
func Level() slog.Level {
	return level.Level()
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	rebuild()
}

// SetJSONOutput switches between JSON lines and the compact console format
func SetJSONOutput(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOut = enabled
	rebuild()
}

// LevelFromVerbosity maps the -v count onto a level: 0 info, 1 debug, 2+ trace
func LevelFromVerbosity(count int) slog.Level {
	switch {
	case count <= 0:
		return slog.LevelInfo
	case count == 1:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// ParseLevel accepts trace, debug, info, warn and error
func ParseLevel(s string) (slog.Level, bool) {
	if s == "trace" {
		return LevelTrace, true
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, false
	}
	return l, true
}

// WithRequestID stores a request id in the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey(requestIDKey), requestID)
}

// GetRequestID returns the request id stored in the context, if any
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey(requestIDKey)).(string)
	return id
}

// WithCaseID stores the id of the case a request operates on
func WithCaseID(ctx context.Context, caseID string) context.Context {
	return context.WithValue(ctx, contextKey(caseIDKey), caseID)
}

// GetCaseID returns the case id stored in the context, if any
func GetCaseID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey(caseIDKey)).(string)
	return id
}

func contextArgs(ctx context.Context, args []any) []any {
	if id := GetCaseID(ctx); id != "" {
		args = append([]any{caseIDKey, id}, args...)
	}
	if id := GetRequestID(ctx); id != "" {
		args = append([]any{requestIDKey, id}, args...)
	}
	return args
}

// Trace logs very verbose internals
func Trace(msg string, args ...any) {
	current().Log(context.Background(), LevelTrace, msg, args...)
}

// TraceContext logs at trace level with request and case ids
func TraceContext(ctx context.Context, msg string, args ...any) {
	current().Log(ctx, LevelTrace, msg, contextArgs(ctx, args)...)
}

// Debug logs component behavior
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// DebugContext logs at debug level with request and case ids
func DebugContext(ctx context.Context, msg string, args ...any) {
	current().DebugContext(ctx, msg, contextArgs(ctx, args)...)
}

// Info logs user-facing operations
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// InfoContext logs at info level with request and case ids
func InfoContext(ctx context.Context, msg string, args ...any) {
	current().InfoContext(ctx, msg, contextArgs(ctx, args)...)
}

// Warn logs recoverable failures
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// WarnContext logs at warn level with request and case ids
func WarnContext(ctx context.Context, msg string, args ...any) {
	current().WarnContext(ctx, msg, contextArgs(ctx, args)...)
}

// Error logs failures that need attention
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// ErrorContext logs at error level with request and case ids
func ErrorContext(ctx context.Context, msg string, args ...any) {
	current().ErrorContext(ctx, msg, contextArgs(ctx, args)...)
}

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) {
	current().Error(msg, args...)
	os.Exit(1)
}
