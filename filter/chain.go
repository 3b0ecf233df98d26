package filter

import (
	"context"

	"github.com/in-session/magento2-search-blocker/internal/logging"
)

// Chain runs filters in order until one rejects the term. Order is fixed at
// construction; a Chain holds no mutable state and is safe for concurrent use.
type Chain struct {
	filters []Filter
}

// NewChain creates a chain over the given filters in evaluation order.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Run executes each filter in order and returns as soon as one rejects.
// A filter error is logged and the stage skipped: an infrastructure problem
// must never block a legitimate search, only a content match may.
func (c *Chain) Run(ctx context.Context, fctx *Context) {
	for _, f := range c.filters {
		if err := f.Check(ctx, fctx); err != nil {
			logging.FromContext(ctx).Warn("search filter error", "filter", f.Name(), "error", err)
			continue
		}
		if fctx.Reject {
			return
		}
	}
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int { return len(c.filters) }
