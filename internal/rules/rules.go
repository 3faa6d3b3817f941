// Package rules implements the glob-matched window classification
// engine: an ordered list of (matcher, action) pairs, re-sorted by
// descending specificity on every insert, first-match-wins per
// property (spec §4.2).
package rules

import (
	"reflect"
	"sort"

	"github.com/kaedewm/yashiki/internal/glob"
	"github.com/kaedewm/yashiki/internal/model"
)

// ActionKind discriminates the tagged-union Action.
type ActionKind int

const (
	ActionIgnore ActionKind = iota
	ActionFloat
	ActionNoFloat
	ActionTags
	ActionOutput
	ActionPosition
	ActionDimensions
)

// OutputSpecifier is either a numeric display id or a case-insensitive
// substring of a display name.
type OutputSpecifier struct {
	ID       *model.DisplayID
	NameSubs string // used when ID is nil
}

// Action is the effect a matching rule has on classification.
type Action struct {
	Kind ActionKind

	Tags   uint32          // ActionTags
	Output OutputSpecifier // ActionOutput
	X, Y   int             // ActionPosition
	W, H   uint32          // ActionDimensions
}

// Matcher holds optional glob patterns and exact extended-attribute
// filters used to classify a window.
type Matcher struct {
	AppName *glob.Pattern
	AppID   *glob.Pattern
	Title   *glob.Pattern
	AXID    *glob.Pattern
	Subrole *glob.Pattern

	WindowLevel      *int
	CloseButton      *model.ButtonState
	FullscreenButton *model.ButtonState
	MinimizeButton   *model.ButtonState
	ZoomButton       *model.ButtonState
}

// Specificity sums the specificity of every present pattern plus a
// fixed increment per exact-value filter present.
const exactFilterIncrement = 1

func (m Matcher) Specificity() int {
	total := 0
	for _, p := range []*glob.Pattern{m.AppName, m.AppID, m.Title, m.AXID, m.Subrole} {
		if p != nil {
			total += p.Specificity()
		}
	}
	for _, present := range []bool{
		m.WindowLevel != nil,
		m.CloseButton != nil,
		m.FullscreenButton != nil,
		m.MinimizeButton != nil,
		m.ZoomButton != nil,
	} {
		if present {
			total += exactFilterIncrement
		}
	}
	return total
}

// MatchesExtended reports whether the matcher accepts the given window
// attributes. A nil field always matches.
func (m Matcher) MatchesExtended(appName, appID, title string, ext model.ExtendedAttributes) bool {
	if m.AppName != nil && !m.AppName.Matches(appName) {
		return false
	}
	if m.AppID != nil && !m.AppID.Matches(appID) {
		return false
	}
	if m.Title != nil && !m.Title.Matches(title) {
		return false
	}
	if m.AXID != nil && !m.AXID.Matches(ext.AXID) {
		return false
	}
	if m.Subrole != nil && !m.Subrole.Matches(ext.Subrole) {
		return false
	}
	if m.WindowLevel != nil && *m.WindowLevel != ext.WindowLevel {
		return false
	}
	if m.CloseButton != nil && *m.CloseButton != ext.CloseButton {
		return false
	}
	if m.FullscreenButton != nil && *m.FullscreenButton != ext.FullscreenButton {
		return false
	}
	if m.MinimizeButton != nil && *m.MinimizeButton != ext.MinimizeButton {
		return false
	}
	if m.ZoomButton != nil && *m.ZoomButton != ext.ZoomButton {
		return false
	}
	return true
}

// Rule pairs a matcher with the action taken when it matches.
type Rule struct {
	Matcher Matcher
	Action  Action
}

// Engine owns a specificity-sorted rule list.
type Engine struct {
	rules []Rule
}

// NewEngine returns an empty rules engine.
func NewEngine() *Engine { return &Engine{} }

// Add appends a rule and re-sorts by descending specificity.
func (e *Engine) Add(r Rule) {
	e.rules = append(e.rules, r)
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Matcher.Specificity() > e.rules[j].Matcher.Specificity()
	})
}

// Remove deletes the first rule whose matcher and action exactly match
// (by value), reporting whether anything was removed.
func (e *Engine) Remove(matcher Matcher, action Action) bool {
	for i, r := range e.rules {
		if reflect.DeepEqual(r.Matcher, matcher) && reflect.DeepEqual(r.Action, action) {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Rules returns the current specificity-ordered rule list.
func (e *Engine) Rules() []Rule { return e.rules }

// ApplicationResult is the outcome of classifying one window.
type ApplicationResult struct {
	Tags       *uint32
	DisplayID  *model.DisplayID
	IsFloating *bool
	Position   *[2]int
	Dimensions *[2]uint32
}

// ShouldIgnore reports whether any Ignore rule matches the attributes.
func (e *Engine) ShouldIgnore(appName, appID, title string, ext model.ExtendedAttributes) bool {
	for _, r := range e.rules {
		if r.Action.Kind == ActionIgnore && r.Matcher.MatchesExtended(appName, appID, title, ext) {
			return true
		}
	}
	return false
}

// HasMatchingNonIgnoreRule reports whether any non-Ignore rule matches.
func (e *Engine) HasMatchingNonIgnoreRule(appName, appID, title string, ext model.ExtendedAttributes) bool {
	for _, r := range e.rules {
		if r.Action.Kind != ActionIgnore && r.Matcher.MatchesExtended(appName, appID, title, ext) {
			return true
		}
	}
	return false
}

// ResolveOutputFunc resolves an OutputSpecifier against a display
// lookup function; returns false if unresolved.
type ResolveOutputFunc func(OutputSpecifier) (model.DisplayID, bool)

// Classify walks the rule list in specificity order and builds a
// ApplicationResult using first-match-wins per property. If window
// level != 0 and is_floating is still unset after the walk, it
// defaults to floating (non-standard layers are opt-in to tiling).
func (e *Engine) Classify(appName, appID, title string, ext model.ExtendedAttributes, resolveOutput ResolveOutputFunc) ApplicationResult {
	var result ApplicationResult
	for _, r := range e.rules {
		if !r.Matcher.MatchesExtended(appName, appID, title, ext) {
			continue
		}
		switch r.Action.Kind {
		case ActionIgnore:
			// handled separately via ShouldIgnore
		case ActionFloat:
			if result.IsFloating == nil {
				v := true
				result.IsFloating = &v
			}
		case ActionNoFloat:
			if result.IsFloating == nil {
				v := false
				result.IsFloating = &v
			}
		case ActionTags:
			if result.Tags == nil {
				v := r.Action.Tags
				result.Tags = &v
			}
		case ActionOutput:
			if result.DisplayID == nil && resolveOutput != nil {
				if id, ok := resolveOutput(r.Action.Output); ok {
					result.DisplayID = &id
				}
			}
		case ActionPosition:
			if result.Position == nil {
				v := [2]int{r.Action.X, r.Action.Y}
				result.Position = &v
			}
		case ActionDimensions:
			if result.Dimensions == nil {
				v := [2]uint32{r.Action.W, r.Action.H}
				result.Dimensions = &v
			}
		}
	}
	if result.IsFloating == nil && ext.WindowLevel != 0 {
		v := true
		result.IsFloating = &v
	}
	return result
}
