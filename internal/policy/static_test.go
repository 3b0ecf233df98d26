package policy

import (
	"testing"

	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/search"
)

func testConfig() searchblocker.Config {
	return searchblocker.Config{
		Enabled:      true,
		Channels:     searchblocker.ChannelToggles{Frontend: true, REST: false, GraphQL: true},
		Blacklist:    " Banned , CHEAP replica ,, ",
		RedirectPath: "/blocked",
		RegexFilter:  true,
		Logging:      searchblocker.LoggingConfig{Enabled: true, Channels: "frontend,rest"},
	}
}

func TestStaticStoreFlags(t *testing.T) {
	s := NewStaticStore(testConfig())

	if !s.IsGlobalEnabled() {
		t.Error("expected global enabled")
	}
	if !s.IsChannelEnabled(search.ChannelFrontend) || s.IsChannelEnabled(search.ChannelREST) {
		t.Error("unexpected channel toggles")
	}
	if !s.IsRegexFilterEnabled() {
		t.Error("expected regex filter enabled")
	}
	if s.RedirectPath() != "/blocked" {
		t.Errorf("unexpected redirect path: %s", s.RedirectPath())
	}
}

func TestStaticStoreBlacklistNormalized(t *testing.T) {
	s := NewStaticStore(testConfig())
	terms := s.BlacklistTerms()
	if len(terms) != 2 {
		t.Fatalf("expected 2 terms, got %v", terms)
	}
	if terms[0] != "banned" || terms[1] != "cheap replica" {
		t.Errorf("terms not normalized: %v", terms)
	}
}

func TestStaticStoreLoggingGate(t *testing.T) {
	s := NewStaticStore(testConfig())

	if !s.IsLoggingEnabled() {
		t.Error("global gate should be open")
	}
	if !s.IsLoggingEnabled(search.ChannelFrontend) {
		t.Error("frontend is in the log channel set")
	}
	if s.IsLoggingEnabled(search.ChannelGraphQL) {
		t.Error("graphql is not in the log channel set")
	}

	cfg := testConfig()
	cfg.Logging.Enabled = false
	off := NewStaticStore(cfg)
	if off.IsLoggingEnabled() || off.IsLoggingEnabled(search.ChannelFrontend) {
		t.Error("closed global gate must win over channel membership")
	}
}

func TestStaticStoreSnapshotIsSelf(t *testing.T) {
	s := NewStaticStore(testConfig())
	if s.Snapshot() != searchblocker.Store(s) {
		t.Error("snapshot of a static store should be the store itself")
	}
}

func TestDisabledStoreAllowsNothingThrough(t *testing.T) {
	if disabledStore.IsGlobalEnabled() {
		t.Error("disabled store must report global disabled")
	}
	if disabledStore.IsLoggingEnabled() {
		t.Error("disabled store must not log")
	}
}
