package logging

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDMiddleware tags each request with an id (taken from X-Request-ID
// or generated) and logs its outcome. Reads that succeed are logged at debug
// so that UI polling stays quiet at the default level.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx := WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		rw := &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start).Milliseconds()

		args := []any{"method", r.Method, "path", r.URL.Path, "status", rw.status, "durationMs", elapsed}
		switch {
		case rw.status >= 500:
			ErrorContext(ctx, "request failed", args...)
		case rw.status >= 400:
			WarnContext(ctx, "request rejected", args...)
		case r.Method == http.MethodGet || r.Method == http.MethodHead:
			DebugContext(ctx, "request completed", args...)
		default:
			InfoContext(ctx, "request completed", args...)
		}
	})
}

// ResponseWriter records the status code written by a handler
type ResponseWriter struct {
	http.ResponseWriter
	status int
}

// NewResponseWriter wraps w, assuming 200 until a handler says otherwise
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// Status returns the written status code
func (rw *ResponseWriter) Status() int {
	return rw.status
}

func (rw *ResponseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent event streams working through the wrapper
func (rw *ResponseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
