// Package filter defines the Filter interface and the ordered chain a search
// term passes through before it is accepted.
//
// Filters are registered by name via RegisterFactory and assembled into a
// Chain. The filter.Context carries the normalized term and the per-call
// policy view through each stage, and filters may reject the term.
//
// Built-in filters live in the internal/filters/* packages and are registered
// by importing them with a blank import (e.g. _ "github.com/in-session/magento2-search-blocker/internal/filters/blacklist").
package filter

import (
	"context"

	"github.com/in-session/magento2-search-blocker/search"
)

// Policy is the read-only slice of the policy snapshot that content filters
// consult. The validator supplies it per call, so a filter instance carries
// no configuration of its own.
type Policy interface {
	IsRegexFilterEnabled() bool
	BlacklistTerms() []string
}

// Filter is the interface all term filters implement.
type Filter interface {
	Name() string
	Check(ctx context.Context, fctx *Context) error
}

// Context provides access to the term under validation for filters.
type Context struct {
	Channel search.Channel
	Term    string // normalized: trimmed and lowercased
	Policy  Policy

	Reject  bool
	Reason  search.Reason
	Message string
}

// NewContext creates a filter context for one validation call.
func NewContext(ch search.Channel, term string, pol Policy) *Context {
	return &Context{Channel: ch, Term: term, Policy: pol}
}

// Factory creates a new instance of a filter.
type Factory func() Filter

// filterRegistry is the global registry of filter factories.
var filterRegistry = map[string]Factory{}

// RegisterFactory registers a filter factory by name.
func RegisterFactory(name string, factory Factory) {
	filterRegistry[name] = factory
}

// GetFactory returns a filter factory by name.
func GetFactory(name string) (Factory, bool) {
	f, ok := filterRegistry[name]
	return f, ok
}

// RegisteredFilters returns the names of all registered filter factories.
func RegisteredFilters() []string {
	names := make([]string, 0, len(filterRegistry))
	for name := range filterRegistry {
		names = append(names, name)
	}
	return names
}
