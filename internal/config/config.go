// Package config holds the daemon's in-memory-only runtime settings
// (outer gap, cursor-warp mode, layout-engine exec path). There is no
// persistence across restarts, per the no-persistence non-goal; this
// mirrors the teacher's config.Config getter-oriented API shape
// without its JSON load/migrate/write machinery.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// CursorWarpMode controls when the cursor is warped to a window/display
// center.
type CursorWarpMode int

const (
	CursorWarpDisabled CursorWarpMode = iota
	CursorWarpOnOutputChange
	CursorWarpOnFocusChange
)

func (m CursorWarpMode) String() string {
	switch m {
	case CursorWarpOnOutputChange:
		return "on_output_change"
	case CursorWarpOnFocusChange:
		return "on_focus_change"
	default:
		return "disabled"
	}
}

// OuterGap is a per-side pixel reserve subtracted from a display's
// frame before layout.
type OuterGap struct {
	Top, Right, Bottom, Left int
}

// All returns a gap equal on all four sides.
func All(v int) OuterGap { return OuterGap{Top: v, Right: v, Bottom: v, Left: v} }

// VerticalHorizontal returns a gap with equal top/bottom and equal
// left/right.
func VerticalHorizontal(v, h int) OuterGap {
	return OuterGap{Top: v, Bottom: v, Left: h, Right: h}
}

// FromArgs parses the 1/2/4-argument forms accepted by SetOuterGap:
// one value (all sides), two values (vertical, horizontal), or four
// values (top, right, bottom, left).
func FromArgs(args []string) (OuterGap, bool) {
	vals := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return OuterGap{}, false
		}
		vals[i] = n
	}
	switch len(vals) {
	case 1:
		return All(vals[0]), true
	case 2:
		return VerticalHorizontal(vals[0], vals[1]), true
	case 4:
		return OuterGap{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, true
	default:
		return OuterGap{}, false
	}
}

// Horizontal returns Left + Right.
func (g OuterGap) Horizontal() int { return g.Left + g.Right }

// Vertical returns Top + Bottom.
func (g OuterGap) Vertical() int { return g.Top + g.Bottom }

func (g OuterGap) String() string {
	return fmt.Sprintf("%d %d %d %d", g.Top, g.Right, g.Bottom, g.Left)
}

// AddExecPath splices a new path-segment into an existing PATH-style
// string. append=true appends ("existing:path"); append=false prepends
// ("path:existing") — the flag names the new segment's position, not a
// generic append/prepend toggle. An empty existing value is replaced
// outright.
func AddExecPath(existing, path string, append_ bool) string {
	if existing == "" {
		return path
	}
	if append_ {
		return existing + ":" + path
	}
	return path + ":" + existing
}

// SplitExecPath is a convenience accessor mirroring the PATH-style
// colon-separated convention used by exec path values.
func SplitExecPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ":")
}
