// Package glob implements the four-form, case-insensitive glob used by
// the rules engine: exact ("foo"), prefix ("foo*"), suffix ("*foo"),
// contains ("*foo*"), and wildcard-only ("*").
package glob

import "strings"

// Pattern is a compiled glob with a precomputed specificity score.
type Pattern struct {
	raw  string
	kind kind
	core string // raw with leading/trailing '*' stripped
}

type kind int

const (
	kindExact kind = iota
	kindPrefix
	kindSuffix
	kindContains
	kindWildcard
)

// New compiles a pattern string.
func New(pattern string) Pattern {
	hasPrefix := strings.HasPrefix(pattern, "*")
	hasSuffix := strings.HasSuffix(pattern, "*")

	switch {
	case pattern == "*":
		return Pattern{raw: pattern, kind: kindWildcard}
	case hasPrefix && hasSuffix && len(pattern) >= 2:
		return Pattern{raw: pattern, kind: kindContains, core: pattern[1 : len(pattern)-1]}
	case hasSuffix:
		return Pattern{raw: pattern, kind: kindPrefix, core: pattern[:len(pattern)-1]}
	case hasPrefix:
		return Pattern{raw: pattern, kind: kindSuffix, core: pattern[1:]}
	default:
		return Pattern{raw: pattern, kind: kindExact, core: pattern}
	}
}

// String returns the original pattern text.
func (p Pattern) String() string { return p.raw }

// Matches reports whether s matches the pattern, case-insensitively.
func (p Pattern) Matches(s string) bool {
	s = strings.ToLower(s)
	switch p.kind {
	case kindWildcard:
		return true
	case kindPrefix:
		return strings.HasPrefix(s, strings.ToLower(p.core))
	case kindSuffix:
		return strings.HasSuffix(s, strings.ToLower(p.core))
	case kindContains:
		return strings.Contains(s, strings.ToLower(p.core))
	default:
		return strings.EqualFold(s, p.core)
	}
}

// Specificity scores the pattern from most (large) to least (0)
// specific: exact = 4*len, prefix/suffix = 2*(len-1), contains =
// len-2, wildcard-only = 0. Subtractions saturate at 0.
func (p Pattern) Specificity() int {
	n := len(p.core)
	switch p.kind {
	case kindExact:
		return 4 * n
	case kindPrefix, kindSuffix:
		return 2 * saturatingSub(n, 1)
	case kindContains:
		return saturatingSub(n, 2)
	default:
		return 0
	}
}

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}
