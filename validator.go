// Package searchblocker implements a request-time search-term validator for
// commerce storefronts: given the entry channel and a raw query string it
// decides whether the term is allowed, consulting an admin-controlled policy.
//
// The Validator type is the main entry point: create one with New around a
// policy Store and call Validate per incoming search. The adapters in
// internal/httpapi translate each verdict into the channel-specific response
// (redirect, HTTP 400, GraphQL field error).
//
// The policy can come from a static file via [LoadConfig] or from a SQL
// store updateable at runtime; see the internal/policy package.
package searchblocker

import (
	"context"
	"time"

	"github.com/in-session/magento2-search-blocker/filter"
	"github.com/in-session/magento2-search-blocker/internal/filters/blacklist"
	"github.com/in-session/magento2-search-blocker/internal/filters/patternfilter"
	"github.com/in-session/magento2-search-blocker/internal/metrics"
	"github.com/in-session/magento2-search-blocker/search"
)

// Store is the read-only policy view the validator consults. Implementations
// must degrade to disabled on read failure; the validator never sees an
// error and never returns one.
type Store interface {
	IsGlobalEnabled() bool
	IsChannelEnabled(ch search.Channel) bool
	IsRegexFilterEnabled() bool
	// BlacklistTerms returns the forbidden substrings, already lowercased,
	// trimmed and with empty entries removed. Callers must not mutate the
	// returned slice.
	BlacklistTerms() []string
	RedirectPath() string
	// IsLoggingEnabled reports the global logging gate, or, when a channel
	// is given, whether events for that channel are written.
	IsLoggingEnabled(ch ...search.Channel) bool
}

// Snapshotter is implemented by stores that can hand out an immutable
// snapshot, so the several policy reads within one validation agree even
// while an admin update lands.
type Snapshotter interface {
	Snapshot() Store
}

// Validator is the decision engine. It holds no mutable state and is safe
// for concurrent use from any number of request handlers.
type Validator struct {
	policy Store
	chain  *filter.Chain
}

// New creates a Validator over the given policy store. The content stages
// run in fixed order: pattern filter first, blacklist second.
func New(policy Store) *Validator {
	return &Validator{
		policy: policy,
		chain:  filter.NewChain(patternfilter.New(), blacklist.New()),
	}
}

// Policy returns the validator's policy store, for adapters that need the
// redirect path and logging gates.
func (v *Validator) Policy() Store { return v.policy }

// Validate decides whether rawTerm may be searched through the given
// channel. It always returns a verdict; a policy outage surfaces as Allow.
func (v *Validator) Validate(ctx context.Context, ch search.Channel, rawTerm string) search.Verdict {
	start := time.Now()
	verdict := v.validate(ctx, ch, rawTerm)

	outcome := "allowed"
	if verdict.Blocked {
		outcome = "blocked"
		metrics.BlockedTotal.WithLabelValues(string(ch), string(verdict.Reason)).Inc()
	}
	metrics.ValidationsTotal.WithLabelValues(string(ch), outcome).Inc()
	metrics.ValidationDuration.WithLabelValues(string(ch)).Observe(time.Since(start).Seconds())

	return verdict
}

func (v *Validator) validate(ctx context.Context, ch search.Channel, rawTerm string) search.Verdict {
	pol := v.policy
	if s, ok := pol.(Snapshotter); ok {
		pol = s.Snapshot()
	}

	if !pol.IsGlobalEnabled() || !pol.IsChannelEnabled(ch) {
		// Feature-flag escape hatch: the pipeline is bypassed entirely,
		// this is not a default-deny system.
		return search.Allow()
	}

	term := search.NormalizeTerm(rawTerm)
	if term == "" {
		// Empty searches are not a threat; what to do with them is the
		// adapter's concern.
		return search.Allow()
	}

	fctx := filter.NewContext(ch, term, pol)
	v.chain.Run(ctx, fctx)

	if fctx.Reject {
		return search.Block(fctx.Reason, fctx.Message)
	}
	return search.Allow()
}
