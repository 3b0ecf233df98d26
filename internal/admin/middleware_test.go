package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func protectedHandler(store *KeyStore, scopes ...string) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if len(scopes) > 0 {
		h = RequireScope(scopes...)(h)
	}
	return AuthMiddleware(store)(h)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	h := protectedHandler(NewKeyStore())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareInvalidKey(t *testing.T) {
	h := protectedHandler(NewKeyStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sb-bogus")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareValidKey(t *testing.T) {
	store := NewKeyStore()
	key, _ := store.Create("ok", []string{ScopeAdmin})
	h := protectedHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+key.Key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireScopeForbidsInsufficientScope(t *testing.T) {
	store := NewKeyStore()
	key, _ := store.Create("reader", []string{ScopeReadOnly})
	h := protectedHandler(store, ScopeAdmin)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", "Bearer "+key.Key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequireScopeAnyOf(t *testing.T) {
	store := NewKeyStore()
	key, _ := store.Create("reader", []string{ScopeReadOnly})
	h := protectedHandler(store, ScopeReadOnly, ScopeAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+key.Key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
