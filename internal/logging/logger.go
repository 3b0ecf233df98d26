// Package logging provides structured logging with trace ID propagation.
// Every request gets a trace ID injected by Middleware and carried through
// the context, so an audit entry can be correlated with the request and the
// log lines it produced.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// level backs the package logger and can be adjusted at runtime.
var level slog.LevelVar

// Logger is the package-level structured logger. Callers should prefer
// FromContext(ctx) to automatically attach the request trace ID.
var Logger *slog.Logger

func init() {
	Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Setup (re-)initialises the package logger. levelName is any value accepted
// by slog.Level.UnmarshalText, e.g. debug/info/warn/error (default info).
// format is "json" (default) or "text". Output goes to stderr so piped
// command output stays clean.
func Setup(levelName, format string) {
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: &level}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// SetLevel changes the minimum level of the package logger without
// rebuilding its handler.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// NewTraceID generates a random 16-byte hex trace ID.
func NewTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithTraceID stores a trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext retrieves the trace ID stored in the context.
func TraceIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

// FromContext returns a *slog.Logger pre-annotated with the trace_id from ctx.
func FromContext(ctx context.Context) *slog.Logger {
	if id := TraceIDFromContext(ctx); id != "" {
		return Logger.With("trace_id", id)
	}
	return Logger
}

// Middleware injects a trace ID into every request context, echoes it in the
// X-Request-ID response header, and logs a completion line with the status
// and duration. The incoming X-Request-ID header is honoured when present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Request-ID")
		if traceID == "" {
			traceID = NewTraceID()
		}
		ctx := WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Request-ID", traceID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		FromContext(ctx).Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
