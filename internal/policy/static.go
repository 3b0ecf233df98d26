// Package policy provides the policy store implementations consumed by the
// validator: an immutable snapshot over one Config, a SQL-backed store for
// admin-driven updates, and a read-through cached wrapper giving every
// validation call one atomic snapshot.
package policy

import (
	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/search"
)

// StaticStore is an immutable policy snapshot over one Config. It backs
// file-configured deployments, serves as the test double, and is the
// snapshot type handed out by CachedStore.
type StaticStore struct {
	cfg         searchblocker.Config
	blacklist   []string
	logChannels map[search.Channel]bool
}

// NewStaticStore parses the config's stored lists once and returns an
// immutable store, safe for concurrent use.
func NewStaticStore(cfg searchblocker.Config) *StaticStore {
	return &StaticStore{
		cfg:         cfg,
		blacklist:   searchblocker.ParseList(cfg.Blacklist),
		logChannels: searchblocker.ParseChannels(cfg.Logging.Channels),
	}
}

// disabledStore is served when the policy source cannot be read: global
// disabled means every term is allowed and nothing is logged.
var disabledStore = NewStaticStore(searchblocker.Config{})

// IsGlobalEnabled reports the global validation switch.
func (s *StaticStore) IsGlobalEnabled() bool { return s.cfg.Enabled }

// IsChannelEnabled reports whether validation is on for the given channel.
func (s *StaticStore) IsChannelEnabled(ch search.Channel) bool {
	return s.cfg.Channels.Enabled(ch)
}

// IsRegexFilterEnabled reports whether the pattern stage is active.
func (s *StaticStore) IsRegexFilterEnabled() bool { return s.cfg.RegexFilter }

// BlacklistTerms returns the parsed blacklist. Callers must not mutate it.
func (s *StaticStore) BlacklistTerms() []string { return s.blacklist }

// RedirectPath returns the frontend redirect override, or "" when unset.
func (s *StaticStore) RedirectPath() string { return s.cfg.RedirectPath }

// IsLoggingEnabled reports the global logging gate alone, or ANDed with
// channel membership when a channel is given.
func (s *StaticStore) IsLoggingEnabled(ch ...search.Channel) bool {
	if !s.cfg.Logging.Enabled {
		return false
	}
	for _, c := range ch {
		if !s.logChannels[c] {
			return false
		}
	}
	return true
}

// Snapshot returns the store itself; a StaticStore already is one immutable
// snapshot.
func (s *StaticStore) Snapshot() searchblocker.Store { return s }
