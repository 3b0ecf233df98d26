// Package admin provides the HTTP surface for managing the blocker policy at
// runtime: policy CRUD, audit log access, and health. All routes are
// protected by bearer-token authentication via AuthMiddleware.
package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/internal/auditlog"
	"github.com/in-session/magento2-search-blocker/internal/logging"
)

// ConfigStore persists the policy for runtime management. The SQL-backed
// store in internal/policy implements it.
type ConfigStore interface {
	Save(cfg searchblocker.Config) error
	Load() (searchblocker.Config, bool, error)
	Delete() error
}

// Invalidator drops any cached policy snapshot after an update so the new
// policy takes effect without waiting out the cache TTL.
type Invalidator interface {
	Invalidate()
}

// Handlers holds dependencies for admin HTTP handlers. Cache, Logs and
// LogAdmin are optional.
type Handlers struct {
	Configs  ConfigStore
	Cache    Invalidator
	Defaults searchblocker.Config
	Logs     auditlog.Reader
	LogAdmin auditlog.Maintainer
}

// Routes returns a chi.Router with all admin endpoints mounted.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	// Read-only endpoints (accessible with read-only or admin scope).
	r.Group(func(r chi.Router) {
		r.Use(RequireScope(ScopeReadOnly, ScopeAdmin))
		r.Get("/policy", h.getPolicy)
		r.Get("/logs", h.listLogs)
		r.Get("/health", h.healthCheck)
	})

	// Write endpoints (admin scope only).
	r.Group(func(r chi.Router) {
		r.Use(RequireScope(ScopeAdmin))
		r.Put("/policy", h.updatePolicy)
		r.Delete("/policy", h.deletePolicy)
		r.Delete("/logs", h.deleteLogs)
	})

	return r
}

func (h *Handlers) getPolicy(w http.ResponseWriter, r *http.Request) {
	cfg := h.Defaults
	if h.Configs != nil {
		loaded, ok, err := h.Configs.Load()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), "", "")
			return
		}
		if ok {
			cfg = loaded
		}
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handlers) updatePolicy(w http.ResponseWriter, r *http.Request) {
	if h.Configs == nil {
		writeError(w, http.StatusNotImplemented, "no persistent policy store configured", "", "no_policy_store")
		return
	}

	var cfg searchblocker.Config
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_request_error", "invalid_policy")
		return
	}
	if err := searchblocker.ValidateConfig(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_request_error", "invalid_policy")
		return
	}

	if err := h.Configs.Save(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "", "")
		return
	}
	h.invalidate()
	logging.FromContext(r.Context()).Info("policy updated")
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handlers) deletePolicy(w http.ResponseWriter, r *http.Request) {
	if h.Configs == nil {
		writeError(w, http.StatusNotImplemented, "no persistent policy store configured", "", "no_policy_store")
		return
	}
	if err := h.Configs.Delete(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "", "")
		return
	}
	h.invalidate()
	logging.FromContext(r.Context()).Info("policy reset to defaults")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listLogs(w http.ResponseWriter, r *http.Request) {
	if h.Logs == nil {
		writeError(w, http.StatusNotImplemented, "no audit log store configured", "", "no_audit_store")
		return
	}

	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "invalid_request_error", "invalid_limit")
			return
		}
		if n > 1000 {
			n = 1000
		}
		limit = n
	}

	entries, err := h.Logs.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

func (h *Handlers) deleteLogs(w http.ResponseWriter, r *http.Request) {
	if h.LogAdmin == nil {
		writeError(w, http.StatusNotImplemented, "no audit log store configured", "", "no_audit_store")
		return
	}
	if err := h.LogAdmin.Purge(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) invalidate() {
	if h.Cache != nil {
		h.Cache.Invalidate()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
