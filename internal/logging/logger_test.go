package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTraceIDRoundtrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc123")
	if got := TraceIDFromContext(ctx); got != "abc123" {
		t.Errorf("expected abc123, got %q", got)
	}
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty trace ID, got %q", got)
	}
}

func TestNewTraceIDUnique(t *testing.T) {
	a, b := NewTraceID(), NewTraceID()
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("consecutive trace IDs should differ")
	}
}

func TestMiddlewareGeneratesTraceID(t *testing.T) {
	var inCtx string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = TraceIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if inCtx == "" {
		t.Fatal("handler should see a trace ID")
	}
	if got := rec.Header().Get("X-Request-ID"); got != inCtx {
		t.Errorf("header %q does not match context trace ID %q", got, inCtx)
	}
}

func TestMiddlewareHonoursIncomingHeader(t *testing.T) {
	var inCtx string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if inCtx != "client-supplied" {
		t.Errorf("expected client-supplied, got %q", inCtx)
	}
}
