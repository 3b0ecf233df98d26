package searchblocker

import (
	"strings"

	"github.com/in-session/magento2-search-blocker/search"
)

// Config holds the search-blocker policy as stored by the admin surface.
// Blacklist and logging channels keep their stored comma-separated form; use
// ParseList and ParseChannels to obtain the normalized values.
type Config struct {
	// Enabled is the global switch. When false every term is allowed.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Channels enables validation per entry point.
	Channels ChannelToggles `json:"channels" yaml:"channels"`
	// Blacklist is a comma-separated list of forbidden substrings,
	// case-insensitive, whitespace-trimmed per term.
	Blacklist string `json:"blacklist,omitempty" yaml:"blacklist,omitempty"`
	// RedirectPath is where the frontend sends blocked searches.
	// Empty means no override; the adapter falls back to "/".
	RedirectPath string `json:"redirect_path,omitempty" yaml:"redirect_path,omitempty"`
	// RegexFilter toggles the injection-pattern stage.
	RegexFilter bool `json:"regex_filter" yaml:"regex_filter"`
	// Logging controls the audit log gates.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ChannelToggles enables validation for each entry point independently.
type ChannelToggles struct {
	Frontend bool `json:"frontend" yaml:"frontend"`
	REST     bool `json:"rest" yaml:"rest"`
	GraphQL  bool `json:"graphql" yaml:"graphql"`
}

// Enabled reports whether validation is on for the given channel.
func (c ChannelToggles) Enabled(ch search.Channel) bool {
	switch ch {
	case search.ChannelFrontend:
		return c.Frontend
	case search.ChannelREST:
		return c.REST
	case search.ChannelGraphQL:
		return c.GraphQL
	}
	return false
}

// LoggingConfig holds the audit log gates.
type LoggingConfig struct {
	// Enabled is the global logging gate. When false nothing is written
	// regardless of the channel set.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Channels is the comma-joined set of channels whose events are written.
	Channels string `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// DefaultConfig returns the policy used when nothing is configured yet:
// validation on for every channel with the pattern stage active, no
// blacklist, audit logging off.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Channels:    ChannelToggles{Frontend: true, REST: true, GraphQL: true},
		RegexFilter: true,
	}
}

// ParseList splits a comma-separated value into lowercase trimmed entries,
// dropping empties. Order is preserved.
func ParseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseChannels maps a comma-joined channel list onto a channel set. Unknown
// identifiers are skipped here; ValidateConfig reports them.
func ParseChannels(s string) map[search.Channel]bool {
	set := make(map[search.Channel]bool)
	for _, p := range ParseList(s) {
		if ch, err := search.ParseChannel(p); err == nil {
			set[ch] = true
		}
	}
	return set
}
