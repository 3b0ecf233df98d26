// Package patternfilter provides the injection-pattern guardrail filter. It
// rejects terms matching a channel-appropriate SQL-injection heuristic and is
// gated by the policy's regex-filter switch. Register it with a blank import:
//
//	_ "github.com/in-session/magento2-search-blocker/internal/filters/patternfilter"
package patternfilter

import (
	"context"
	"regexp"

	"github.com/in-session/magento2-search-blocker/filter"
	"github.com/in-session/magento2-search-blocker/search"
)

func init() {
	filter.RegisterFactory("pattern-filter", func() filter.Filter {
		return New()
	})
}

// Message is the user-facing rejection text for pattern matches.
const Message = "Suspicious search term detected."

// broadPattern guards the frontend channel: SQL keywords and suspicious
// characters or URL encodings anywhere in the term, including inside larger
// words. A frontend rejection is only a soft redirect.
var broadPattern = regexp.MustCompile(`(?i)` +
	`(union|select|insert|update|delete|drop|alter|create|truncate|declare|exec|sleep|benchmark|information_schema|load_file|outfile)` +
	"|[`'\";\\\\]" +
	`|--|/\*|\*/|%27|%22|%3b|%2527|0x[0-9a-f]{2,}`)

// strictPattern guards the REST and GraphQL channels: SQL keywords only as
// whole words, plus comment and statement-terminator sequences. "selectable"
// must not trip a hard 4xx on an API channel.
var strictPattern = regexp.MustCompile(`(?i)` +
	`\b(union|select|insert|update|delete|drop|alter|create|truncate|declare|exec|sleep|benchmark|information_schema)\b` +
	`|--|/\*|\*/|;|#`)

// Pattern is the guardrail filter applying the channel-appropriate injection
// pattern.
type Pattern struct{}

// New returns a pattern filter.
func New() *Pattern { return &Pattern{} }

// Name returns the filter identifier.
func (p *Pattern) Name() string { return "pattern-filter" }

// Check rejects the term when the regex stage is enabled and the channel's
// pattern matches.
func (p *Pattern) Check(_ context.Context, fctx *filter.Context) error {
	if fctx.Policy == nil || !fctx.Policy.IsRegexFilterEnabled() {
		return nil
	}
	if patternFor(fctx.Channel).MatchString(fctx.Term) {
		fctx.Reject = true
		fctx.Reason = search.ReasonSuspiciousPattern
		fctx.Message = Message
	}
	return nil
}

func patternFor(ch search.Channel) *regexp.Regexp {
	if ch == search.ChannelFrontend {
		return broadPattern
	}
	return strictPattern
}
