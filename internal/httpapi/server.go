// Package httpapi hosts the three entry-point adapters: the storefront
// search route, the REST endpoint, and the GraphQL endpoint. Each adapter is
// a thin translation layer over the one shared Validator: it extracts the
// raw term, asks for a verdict, and renders the channel-appropriate
// response. The decision logic itself lives entirely in the root package.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/internal/auditlog"
	"github.com/in-session/magento2-search-blocker/internal/logging"
	"github.com/in-session/magento2-search-blocker/internal/metrics"
	"github.com/in-session/magento2-search-blocker/search"
)

// Server bundles the validator and the audit sink shared by the adapters.
type Server struct {
	Validator *searchblocker.Validator
	// Audit receives an entry per validated term on channels whose logging
	// gate is open. Nil disables persistence; the slog line is still written.
	Audit auditlog.Writer
	// Search handles requests whose term was allowed. When nil a small echo
	// handler responds, which keeps the daemon usable standalone.
	Search http.Handler
}

// Routes returns a chi.Router with the three guarded entry points mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/catalogsearch/result", s.Frontend)
	r.Post("/api/v1/search", s.REST)
	r.Post("/graphql", s.GraphQL)
	return r
}

// record applies the per-channel logging gate: a structured log line plus an
// audit entry, info-level for allowed and warn-level for blocked terms.
func (s *Server) record(ctx context.Context, ch search.Channel, term string, v search.Verdict) {
	if !s.Validator.Policy().IsLoggingEnabled(ch) {
		return
	}

	log := logging.FromContext(ctx)
	if v.Blocked {
		log.Warn("search term blocked", "channel", string(ch), "term", term, "reason", v.Message)
	} else {
		log.Info("search term allowed", "channel", string(ch), "term", term)
	}

	if s.Audit == nil {
		return
	}
	entry := auditlog.FromVerdict(logging.TraceIDFromContext(ctx), ch, term, v)
	if err := s.Audit.Write(ctx, entry); err != nil {
		metrics.AuditWriteErrors.Inc()
		log.Error("audit write failed", "error", err)
	}
}

func (s *Server) searchHandler() http.Handler {
	if s.Search != nil {
		return s.Search
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"query":   r.URL.Query().Get("q"),
			"results": []interface{}{},
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeBlockError writes the unified JSON error envelope used by the REST
// adapter for rejected terms.
func writeBlockError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"message": message,
			"type":    "invalid_request_error",
			"code":    code,
		},
	})
}
