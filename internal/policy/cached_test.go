package policy

import (
	"errors"
	"testing"
	"time"

	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/search"
)

type stubLoader struct {
	cfg   searchblocker.Config
	ok    bool
	err   error
	loads int
}

func (l *stubLoader) Load() (searchblocker.Config, bool, error) {
	l.loads++
	return l.cfg, l.ok, l.err
}

func TestCachedStoreServesSnapshotWithinTTL(t *testing.T) {
	src := &stubLoader{cfg: testConfig(), ok: true}
	c := NewCachedStore(src, searchblocker.Config{}, time.Hour)

	if !c.IsGlobalEnabled() {
		t.Fatal("expected stored policy to be served")
	}
	c.IsRegexFilterEnabled()
	c.BlacklistTerms()
	c.RedirectPath()

	if src.loads != 1 {
		t.Errorf("expected a single source load within TTL, got %d", src.loads)
	}
}

func TestCachedStoreInvalidateForcesReload(t *testing.T) {
	src := &stubLoader{cfg: testConfig(), ok: true}
	c := NewCachedStore(src, searchblocker.Config{}, time.Hour)

	if !c.IsGlobalEnabled() {
		t.Fatal("expected stored policy")
	}

	src.cfg.Enabled = false
	c.Invalidate()
	if c.IsGlobalEnabled() {
		t.Error("expected the updated policy after invalidation")
	}
	if src.loads != 2 {
		t.Errorf("expected 2 loads, got %d", src.loads)
	}
}

func TestCachedStoreFallbackWhenEmpty(t *testing.T) {
	fallback := testConfig()
	c := NewCachedStore(&stubLoader{ok: false}, fallback, time.Hour)

	if !c.IsGlobalEnabled() {
		t.Error("expected fallback policy while the source is empty")
	}
	if c.RedirectPath() != fallback.RedirectPath {
		t.Errorf("fallback not served: %s", c.RedirectPath())
	}
}

func TestCachedStoreFailsOpenOnError(t *testing.T) {
	c := NewCachedStore(&stubLoader{err: errors.New("db down")}, testConfig(), time.Hour)

	// A source outage serves the disabled snapshot: everything is allowed,
	// nothing crashes.
	if c.IsGlobalEnabled() {
		t.Error("source error must disable validation, not propagate")
	}
	if c.IsLoggingEnabled(search.ChannelFrontend) {
		t.Error("source error must close the logging gate")
	}
}

func TestCachedStoreSnapshotIsStable(t *testing.T) {
	src := &stubLoader{cfg: testConfig(), ok: true}
	c := NewCachedStore(src, searchblocker.Config{}, time.Hour)

	snap := c.Snapshot()
	src.cfg.Enabled = false
	c.Invalidate()

	// The handed-out snapshot must not see the later update.
	if !snap.IsGlobalEnabled() {
		t.Error("snapshot changed under the caller")
	}
	if c.IsGlobalEnabled() {
		t.Error("store should see the update after invalidation")
	}
}

func TestCachedStoreZeroTTLReloadsEveryCall(t *testing.T) {
	src := &stubLoader{cfg: testConfig(), ok: true}
	c := NewCachedStore(src, searchblocker.Config{}, 0)

	c.IsGlobalEnabled()
	c.IsGlobalEnabled()
	if src.loads < 2 {
		t.Errorf("expected a reload per call with zero TTL, got %d", src.loads)
	}
}
