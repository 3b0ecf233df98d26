package policy

import (
	"log/slog"
	"sync"
	"time"

	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/internal/metrics"
	"github.com/in-session/magento2-search-blocker/search"
)

// CachedStore wraps a Loader with a TTL snapshot cache. The several policy
// reads within one validation observe one consistent StaticStore snapshot,
// and admin updates become visible once the TTL elapses or Invalidate is
// called. A source read failure serves the disabled snapshot: a policy
// outage must never take search down.
type CachedStore struct {
	mu       sync.Mutex
	src      Loader
	fallback *StaticStore
	ttl      time.Duration

	snap    *StaticStore
	expires time.Time
}

// NewCachedStore creates a cached store over src. fallback is the policy
// served while the source has nothing stored. A ttl of zero means every
// call reloads from the source.
func NewCachedStore(src Loader, fallback searchblocker.Config, ttl time.Duration) *CachedStore {
	return &CachedStore{src: src, fallback: NewStaticStore(fallback), ttl: ttl}
}

func (c *CachedStore) current() *StaticStore {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap != nil && time.Now().Before(c.expires) {
		return c.snap
	}

	cfg, ok, err := c.src.Load()
	switch {
	case err != nil:
		metrics.PolicyReloads.WithLabelValues("error").Inc()
		slog.Error("policy reload failed, validation disabled until next reload", "error", err)
		c.snap = disabledStore
	case !ok:
		metrics.PolicyReloads.WithLabelValues("empty").Inc()
		c.snap = c.fallback
	default:
		metrics.PolicyReloads.WithLabelValues("ok").Inc()
		c.snap = NewStaticStore(cfg)
	}
	c.expires = time.Now().Add(c.ttl)
	return c.snap
}

// Invalidate drops the cached snapshot so the next read hits the source.
// The admin API calls this after a policy update.
func (c *CachedStore) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

// Snapshot returns the current immutable snapshot, reloading if expired.
func (c *CachedStore) Snapshot() searchblocker.Store { return c.current() }

// IsGlobalEnabled implements searchblocker.Store.
func (c *CachedStore) IsGlobalEnabled() bool { return c.current().IsGlobalEnabled() }

// IsChannelEnabled implements searchblocker.Store.
func (c *CachedStore) IsChannelEnabled(ch search.Channel) bool {
	return c.current().IsChannelEnabled(ch)
}

// IsRegexFilterEnabled implements searchblocker.Store.
func (c *CachedStore) IsRegexFilterEnabled() bool { return c.current().IsRegexFilterEnabled() }

// BlacklistTerms implements searchblocker.Store.
func (c *CachedStore) BlacklistTerms() []string { return c.current().BlacklistTerms() }

// RedirectPath implements searchblocker.Store.
func (c *CachedStore) RedirectPath() string { return c.current().RedirectPath() }

// IsLoggingEnabled implements searchblocker.Store.
func (c *CachedStore) IsLoggingEnabled(ch ...search.Channel) bool {
	return c.current().IsLoggingEnabled(ch...)
}
