package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"regexp"

	"github.com/in-session/magento2-search-blocker/search"
)

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// searchArgPattern pulls an inlined search argument out of a query document,
// e.g. products(search: "tea pot"). Variable-passed terms are read from the
// variables map instead; this is a fallback for inlined literals only.
var searchArgPattern = regexp.MustCompile(`search\s*:\s*"((?:[^"\\]|\\.)*)"`)

// GraphQL guards the GraphQL endpoint. A blocked term produces a 200
// response with a standard field error; an allowed term is forwarded to
// the search handler with the body restored. Requests without a search
// argument pass through untouched.
func (s *Server) GraphQL(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeGraphQLError(w, "unreadable request body")
		return
	}

	var req graphqlRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeGraphQLError(w, "request body must be a JSON GraphQL request")
		return
	}

	term, ok := searchTerm(req)
	if ok {
		verdict := s.Validator.Validate(r.Context(), search.ChannelGraphQL, term)
		s.record(r.Context(), search.ChannelGraphQL, search.NormalizeTerm(term), verdict)
		if verdict.Blocked {
			writeGraphQLError(w, verdict.Message)
			return
		}
	}

	if s.Search != nil {
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.Search.ServeHTTP(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"search": map[string]interface{}{"query": term},
		},
	})
}

// searchTerm extracts the search argument from variables first, then from an
// inlined literal in the query document.
func searchTerm(req graphqlRequest) (string, bool) {
	if v, ok := req.Variables["search"]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	if m := searchArgPattern.FindStringSubmatch(req.Query); m != nil {
		return unescapeLiteral(m[1]), true
	}
	return "", false
}

// unescapeLiteral decodes the string escapes in an inlined literal before
// validation, so an escaped term like banned is seen the way the
// GraphQL engine will decode it. GraphQL string escapes are a subset of
// JSON's. The raw text is validated as-is when decoding fails.
func unescapeLiteral(raw string) string {
	var s string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &s); err != nil {
		return raw
	}
	return s
}

// writeGraphQLError writes a field-level error in the shape GraphQL clients
// expect. Transport status stays 200; the error travels in the errors array.
func writeGraphQLError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"errors": []interface{}{
			map[string]interface{}{
				"message":    message,
				"extensions": map[string]string{"category": "graphql-input"},
			},
		},
	})
}
