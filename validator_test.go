package searchblocker_test

import (
	"context"
	"testing"

	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/internal/filters/blacklist"
	"github.com/in-session/magento2-search-blocker/internal/filters/patternfilter"
	"github.com/in-session/magento2-search-blocker/internal/policy"
	"github.com/in-session/magento2-search-blocker/search"
)

func allOnConfig() searchblocker.Config {
	return searchblocker.Config{
		Enabled:     true,
		Channels:    searchblocker.ChannelToggles{Frontend: true, REST: true, GraphQL: true},
		RegexFilter: true,
	}
}

func newValidator(t *testing.T, cfg searchblocker.Config) *searchblocker.Validator {
	t.Helper()
	return searchblocker.New(policy.NewStaticStore(cfg))
}

func TestDisabledGlobalAllowsEverything(t *testing.T) {
	cfg := allOnConfig()
	cfg.Enabled = false
	cfg.Blacklist = "banned"
	v := newValidator(t, cfg)

	for _, ch := range search.Channels() {
		for _, term := range []string{"union select * from admin_user", "banned", "'; drop table--"} {
			if verdict := v.Validate(context.Background(), ch, term); verdict.Blocked {
				t.Errorf("global disabled: channel %s blocked %q", ch, term)
			}
		}
	}
}

func TestDisabledChannelAllowsEverything(t *testing.T) {
	cfg := allOnConfig()
	cfg.Channels.REST = false
	cfg.Blacklist = "banned"
	v := newValidator(t, cfg)

	if verdict := v.Validate(context.Background(), search.ChannelREST, "union select banned"); verdict.Blocked {
		t.Error("disabled channel must bypass the pipeline")
	}
	if verdict := v.Validate(context.Background(), search.ChannelFrontend, "banned"); !verdict.Blocked {
		t.Error("other channels stay enabled")
	}
}

func TestEmptyAndWhitespaceAllowed(t *testing.T) {
	v := newValidator(t, allOnConfig())
	for _, ch := range search.Channels() {
		for _, term := range []string{"", "   ", "\t\n"} {
			if verdict := v.Validate(context.Background(), ch, term); verdict.Blocked {
				t.Errorf("channel %s blocked empty input %q", ch, term)
			}
		}
	}
}

func TestCaseInsensitive(t *testing.T) {
	v := newValidator(t, allOnConfig())
	for _, ch := range search.Channels() {
		upper := v.Validate(context.Background(), ch, "UNION SELECT")
		lower := v.Validate(context.Background(), ch, "union select")
		if upper != lower {
			t.Errorf("channel %s: case changed the verdict: %+v vs %+v", ch, upper, lower)
		}
		if !upper.Blocked {
			t.Errorf("channel %s should block %q", ch, "union select")
		}
	}
}

func TestBlacklistSubstringRule(t *testing.T) {
	cfg := allOnConfig()
	cfg.RegexFilter = false
	cfg.Blacklist = "banned"
	v := newValidator(t, cfg)

	for _, term := range []string{"this is banned now", "unbannedword"} {
		verdict := v.Validate(context.Background(), search.ChannelFrontend, term)
		if !verdict.Blocked {
			t.Fatalf("expected %q to be blocked", term)
		}
		if verdict.Reason != search.ReasonBlacklisted {
			t.Errorf("unexpected reason for %q: %s", term, verdict.Reason)
		}
		if verdict.Message != blacklist.Message {
			t.Errorf("unexpected message for %q: %s", term, verdict.Message)
		}
	}
}

func TestChannelPatternDivergence(t *testing.T) {
	v := newValidator(t, allOnConfig())

	front := v.Validate(context.Background(), search.ChannelFrontend, "selectable items")
	if !front.Blocked || front.Reason != search.ReasonSuspiciousPattern {
		t.Errorf("frontend should block keyword substring, got %+v", front)
	}

	rest := v.Validate(context.Background(), search.ChannelREST, "selectable items")
	if rest.Blocked {
		t.Errorf("REST should allow keyword substring, got %+v", rest)
	}
}

func TestRegexFiresBeforeBlacklist(t *testing.T) {
	cfg := allOnConfig()
	cfg.Blacklist = "select"
	v := newValidator(t, cfg)

	// Both stages would match; the pattern stage runs first.
	verdict := v.Validate(context.Background(), search.ChannelREST, "union select")
	if !verdict.Blocked {
		t.Fatal("expected block")
	}
	if verdict.Reason != search.ReasonSuspiciousPattern {
		t.Errorf("pattern stage should fire first, got reason %s", verdict.Reason)
	}
	if verdict.Message != patternfilter.Message {
		t.Errorf("unexpected message: %s", verdict.Message)
	}

	// With the pattern stage off, the blacklist applies alone.
	cfg.RegexFilter = false
	v = newValidator(t, cfg)
	verdict = v.Validate(context.Background(), search.ChannelREST, "union select")
	if !verdict.Blocked || verdict.Reason != search.ReasonBlacklisted {
		t.Errorf("blacklist should apply with pattern stage off, got %+v", verdict)
	}
}

func TestIdempotence(t *testing.T) {
	cfg := allOnConfig()
	cfg.Blacklist = "banned, replica"
	v := newValidator(t, cfg)

	inputs := []string{"blue tea pot", "banned", "union select", "  Selectable Items "}
	for _, ch := range search.Channels() {
		for _, term := range inputs {
			first := v.Validate(context.Background(), ch, term)
			for i := 0; i < 3; i++ {
				if got := v.Validate(context.Background(), ch, term); got != first {
					t.Errorf("channel %s term %q: verdict changed across calls: %+v vs %+v", ch, term, first, got)
				}
			}
		}
	}
}

func TestBlacklistOrderFirstMatchWins(t *testing.T) {
	cfg := allOnConfig()
	cfg.RegexFilter = false
	cfg.Blacklist = "tea, pot"
	v := newValidator(t, cfg)

	if verdict := v.Validate(context.Background(), search.ChannelGraphQL, "tea pot"); !verdict.Blocked {
		t.Error("expected block on first blacklist entry")
	}
}

func TestPolicyAccessor(t *testing.T) {
	store := policy.NewStaticStore(allOnConfig())
	v := searchblocker.New(store)
	if v.Policy() != searchblocker.Store(store) {
		t.Error("Policy() should return the injected store")
	}
}
