package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(level slog.Level, msg string, args ...any) slog.Record {
	r := slog.NewRecord(time.Date(2025, 6, 29, 14, 30, 5, 0, time.UTC), level, msg, 0)
	r.Add(args...)
	return r
}

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, nil)

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelWarn, "save failed",
		"path", "/tmp/my data.json", "attempt", 2, "error", "disk full")))

	assert.Equal(t, "[WARN]  14:30:05 save failed | path=\"/tmp/my data.json\" attempt=2 error=\"disk full\"\n", buf.String())
}

func TestCompactHandlerShortensKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, nil)

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "done",
		requestIDKey, "0123456789abcdef", caseIDKey, "case-001", "durationMs", int64(12))))

	assert.Equal(t, "[INFO]  14:30:05 done | req=01234567 case=case-001 duration=12ms\n", buf.String())
}

func TestCompactHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	var h slog.Handler = NewCompactHandler(&buf, nil)
	h = h.WithAttrs([]slog.Attr{slog.String("component", "store")})
	h = h.WithGroup("save")

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "saved", "cases", 4)))

	assert.Equal(t, "[INFO]  14:30:05 saved | component=store save.cases=4\n", buf.String())
}

func TestCompactHandlerEnabled(t *testing.T) {
	h := NewCompactHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestLevelHelpers(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LevelFromVerbosity(0))
	assert.Equal(t, slog.LevelDebug, LevelFromVerbosity(1))
	assert.Equal(t, LevelTrace, LevelFromVerbosity(3))

	l, ok := ParseLevel("warn")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, l)

	l, ok = ParseLevel("trace")
	assert.True(t, ok)
	assert.Equal(t, LevelTrace, l)

	_, ok = ParseLevel("loud")
	assert.False(t, ok)
}

func TestContextIDsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	ctx := WithCaseID(WithRequestID(context.Background(), "abcdef0123456789"), "case-9")
	InfoContext(ctx, "opened")

	line := buf.String()
	assert.Contains(t, line, "opened")
	assert.Contains(t, line, "req=abcdef01")
	assert.Contains(t, line, "case=case-9")
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/cases/x", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", rec.Header().Get("X-Request-ID"))
	assert.True(t, strings.HasPrefix(buf.String(), "[WARN]"), buf.String())
	assert.Contains(t, buf.String(), "status=404")
}
