package httpapi

import (
	"net/http"
	"net/url"

	"github.com/in-session/magento2-search-blocker/search"
)

// MessageCookie is the flash cookie carrying the rejection message to the
// storefront, which renders it on the page the user lands on.
const MessageCookie = "search_blocker_message"

// Frontend guards the storefront search route. A blocked term gets a soft
// redirect to the configured path (default "/") with the message in a flash
// cookie; an allowed term falls through to the search handler.
func (s *Server) Frontend(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")
	verdict := s.Validator.Validate(r.Context(), search.ChannelFrontend, raw)
	s.record(r.Context(), search.ChannelFrontend, search.NormalizeTerm(raw), verdict)

	if verdict.Blocked {
		target := s.Validator.Policy().RedirectPath()
		if target == "" {
			target = "/"
		}
		http.SetCookie(w, &http.Cookie{
			Name:   MessageCookie,
			Value:  url.QueryEscape(verdict.Message),
			Path:   "/",
			MaxAge: 30,
		})
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	s.searchHandler().ServeHTTP(w, r)
}
