package rules

import (
	"testing"

	"github.com/kaedewm/yashiki/internal/glob"
	"github.com/kaedewm/yashiki/internal/model"
)

func pat(s string) *glob.Pattern {
	p := glob.New(s)
	return &p
}

func TestAddSortsBySpecificityDescending(t *testing.T) {
	e := NewEngine()
	e.Add(Rule{Matcher: Matcher{AppName: pat("*")}, Action: Action{Kind: ActionFloat}})
	e.Add(Rule{Matcher: Matcher{AppName: pat("Safari")}, Action: Action{Kind: ActionIgnore}})
	e.Add(Rule{Matcher: Matcher{AppName: pat("Saf*")}, Action: Action{Kind: ActionNoFloat}})

	rules := e.Rules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if rules[0].Matcher.Specificity() < rules[1].Matcher.Specificity() ||
		rules[1].Matcher.Specificity() < rules[2].Matcher.Specificity() {
		t.Fatalf("rules not sorted by descending specificity: %+v", rules)
	}
}

func TestClassifyFirstMatchWinsPerProperty(t *testing.T) {
	e := NewEngine()
	// Less specific rule sets tags to 2; more specific rule (exact) sets tags to 4.
	e.Add(Rule{Matcher: Matcher{AppName: pat("*erm*")}, Action: Action{Kind: ActionTags, Tags: 2}})
	e.Add(Rule{Matcher: Matcher{AppName: pat("Terminal")}, Action: Action{Kind: ActionTags, Tags: 4}})

	result := e.Classify("Terminal", "", "", model.ExtendedAttributes{}, nil)
	if result.Tags == nil || *result.Tags != 4 {
		t.Fatalf("expected most-specific rule's tags (4) to win, got %+v", result.Tags)
	}
}

func TestClassifyDefaultsFloatingForNonNormalLevel(t *testing.T) {
	e := NewEngine()
	result := e.Classify("Spotlight", "", "", model.ExtendedAttributes{WindowLevel: 3}, nil)
	if result.IsFloating == nil || !*result.IsFloating {
		t.Fatalf("non-normal window level with no matching rule should default to floating")
	}
}

func TestShouldIgnore(t *testing.T) {
	e := NewEngine()
	e.Add(Rule{Matcher: Matcher{Subrole: pat("AXUnknown")}, Action: Action{Kind: ActionIgnore}})
	if !e.ShouldIgnore("Foo", "", "", model.ExtendedAttributes{Subrole: "AXUnknown"}) {
		t.Fatalf("expected ignore rule to match")
	}
	if e.ShouldIgnore("Foo", "", "", model.ExtendedAttributes{Subrole: "AXStandard"}) {
		t.Fatalf("ignore rule should not match a different subrole")
	}
}

func TestRemove(t *testing.T) {
	e := NewEngine()
	r := Rule{Matcher: Matcher{AppName: pat("Safari")}, Action: Action{Kind: ActionIgnore}}
	e.Add(r)
	if !e.Remove(r.Matcher, r.Action) {
		t.Fatalf("expected removal to succeed")
	}
	if len(e.Rules()) != 0 {
		t.Fatalf("expected empty rule list after removal")
	}
	if e.Remove(r.Matcher, r.Action) {
		t.Fatalf("second removal of the same rule should report false")
	}
}
