// Package search defines the data model shared by the validator and its
// adapters: the calling channel, term normalization, and the verdict returned
// for every validated term.
package search

import (
	"fmt"
	"strings"
)

// Channel identifies the entry point a search term arrived through.
type Channel string

// Channel constants enumerate the supported entry points.
const (
	ChannelFrontend Channel = "frontend"
	ChannelREST     Channel = "rest"
	ChannelGraphQL  Channel = "graphql"
)

// Channels returns all supported channels in a stable order.
func Channels() []Channel {
	return []Channel{ChannelFrontend, ChannelREST, ChannelGraphQL}
}

// ParseChannel maps a configuration identifier onto a Channel.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelFrontend:
		return ChannelFrontend, nil
	case ChannelREST:
		return ChannelREST, nil
	case ChannelGraphQL:
		return ChannelGraphQL, nil
	}
	return "", fmt.Errorf("unknown channel: %q", s)
}

// NormalizeTerm trims surrounding whitespace and lowercases a raw search
// term. Every filter stage operates on the normalized form; it is recomputed
// per call and never stored.
func NormalizeTerm(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Reason classifies why a term was blocked.
type Reason string

// Block reasons.
const (
	ReasonSuspiciousPattern Reason = "suspicious_pattern"
	ReasonBlacklisted       Reason = "blacklisted"
)

// Verdict is the outcome of validating one search term. It is consumed by
// the calling adapter immediately and never persisted. The zero value is an
// allowing verdict; prefer the Allow and Block constructors.
type Verdict struct {
	Blocked bool
	Reason  Reason
	Message string
}

// Allow returns an allowing verdict.
func Allow() Verdict { return Verdict{} }

// Block returns a blocking verdict with the given reason and user-facing
// message.
func Block(reason Reason, message string) Verdict {
	return Verdict{Blocked: true, Reason: reason, Message: message}
}

// Allowed reports whether the verdict lets the search proceed.
func (v Verdict) Allowed() bool { return !v.Blocked }
