package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/in-session/magento2-search-blocker/search"
)

type restSearchRequest struct {
	Query string `json:"query"`
}

// REST guards the JSON search endpoint. A blocked term fails the request
// with 400 and the verdict message; an allowed term is forwarded to the
// search handler with the body restored.
func (s *Server) REST(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBlockError(w, http.StatusBadRequest, "unreadable request body", "invalid_body")
		return
	}

	var req restSearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeBlockError(w, http.StatusBadRequest, "request body must be JSON with a \"query\" field", "invalid_body")
		return
	}

	verdict := s.Validator.Validate(r.Context(), search.ChannelREST, req.Query)
	s.record(r.Context(), search.ChannelREST, search.NormalizeTerm(req.Query), verdict)

	if verdict.Blocked {
		writeBlockError(w, http.StatusBadRequest, verdict.Message, "blocked_search_term")
		return
	}

	if s.Search != nil {
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.Search.ServeHTTP(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   req.Query,
		"results": []interface{}{},
	})
}
