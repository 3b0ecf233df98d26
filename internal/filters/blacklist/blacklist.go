// Package blacklist provides the guardrail filter that rejects terms
// containing an admin-configured forbidden substring. Register it with a
// blank import:
//
//	_ "github.com/in-session/magento2-search-blocker/internal/filters/blacklist"
package blacklist

import (
	"context"
	"strings"

	"github.com/in-session/magento2-search-blocker/filter"
	"github.com/in-session/magento2-search-blocker/search"
)

func init() {
	filter.RegisterFactory("blacklist", func() filter.Filter {
		return New()
	})
}

// Message is the user-facing rejection text for blacklist matches.
const Message = "This search term is not allowed."

// Blacklist rejects terms that contain a configured forbidden substring.
// Matching is deliberately substring-based rather than whole-word, so simple
// paddings like "unbannedword" are still caught. First match wins, in
// blacklist order.
type Blacklist struct{}

// New returns a blacklist filter.
func New() *Blacklist { return &Blacklist{} }

// Name returns the filter identifier.
func (b *Blacklist) Name() string { return "blacklist" }

// Check rejects the term when it contains any configured blacklist entry.
// Entries arrive already trimmed and lowercased from the policy store.
func (b *Blacklist) Check(_ context.Context, fctx *filter.Context) error {
	if fctx.Policy == nil {
		return nil
	}
	for _, entry := range fctx.Policy.BlacklistTerms() {
		if entry == "" {
			continue
		}
		if strings.Contains(fctx.Term, entry) {
			fctx.Reject = true
			fctx.Reason = search.ReasonBlacklisted
			fctx.Message = Message
			return nil
		}
	}
	return nil
}
