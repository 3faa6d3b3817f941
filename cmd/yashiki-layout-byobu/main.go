// Command yashiki-layout-byobu is a reference layout engine: a
// stacked-cascade tiler. The most recently focused window (tracked
// from "focus-changed" commands) is placed last, at the deepest
// cascade offset; every other window is cascaded behind it, visible
// only as a thin offset strip along the top and left edges. A lone
// window fills the whole area. Rather like folding screen panels
// (hence the name) stacked one behind another. Speaks the same
// protocol as yashiki-layout-tatami (internal/layoutengine, spec.md
// §7); the algorithm is a non-goal, only the protocol contract is
// (DESIGN.md).
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kaedewm/yashiki/internal/layoutengine"
	"github.com/kaedewm/yashiki/internal/wire"
)

const cascadeOffset = 28

func main() {
	r := wire.NewReader(os.Stdin)
	w := wire.NewWriter(os.Stdout)
	var active uint32
	haveActive := false

	for {
		var msg layoutengine.Message
		if err := r.Decode(&msg); err != nil {
			if err == io.EOF {
				return
			}
			fmt.Fprintf(os.Stderr, "yashiki-layout-byobu: decode: %v\n", err)
			return
		}

		switch msg.Type {
		case layoutengine.KindLayout:
			_ = w.Encode(layoutengine.Result{
				Type:    layoutengine.KindLayout,
				Windows: cascade(msg.Width, msg.Height, msg.Windows, active, haveActive),
			})

		case layoutengine.KindCommand:
			result := handleCommand(msg.Cmd, msg.Args, &active, &haveActive)
			_ = w.Encode(result)

		default:
			_ = w.Encode(layoutengine.Result{Type: layoutengine.KindError, Message: fmt.Sprintf("unexpected message type %q", msg.Type)})
		}
	}
}

func handleCommand(cmd string, args []string, active *uint32, haveActive *bool) layoutengine.Result {
	switch cmd {
	case "focus-changed":
		if len(args) != 1 {
			// The core always passes the focused window id as a single
			// arg; tolerate its absence rather than erroring the engine
			// out of a session over a missing diagnostic detail.
			return layoutengine.Result{Type: layoutengine.KindOk}
		}
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return layoutengine.Result{Type: layoutengine.KindError, Message: fmt.Sprintf("focus-changed: %v", err)}
		}
		wasActive := *active
		hadActive := *haveActive
		*active = uint32(id)
		*haveActive = true
		if hadActive && wasActive == *active {
			return layoutengine.Result{Type: layoutengine.KindOk}
		}
		return layoutengine.Result{Type: layoutengine.KindRetile}

	case "cycle":
		// Cycling which window is on top is driven entirely by the
		// next focus-changed notification the core sends after it
		// refocuses; nothing to do here but acknowledge.
		return layoutengine.Result{Type: layoutengine.KindOk}

	default:
		return layoutengine.Result{Type: layoutengine.KindError, Message: fmt.Sprintf("unknown command %q", cmd)}
	}
}

// cascade places the other windows first, in stacking order, and the
// active window last. The window at position i is offset by
// i*cascadeOffset from the top-left and shrunk by the same amount, so
// the active window takes the deepest offset and a sliver of every
// window behind it stays visible; only a lone window gets the full
// area. If no active window is known yet, the
// last window in stacking order is treated as active.
func cascade(width, height uint32, windows []uint32, active uint32, haveActive bool) []layoutengine.WindowGeometry {
	if len(windows) == 0 {
		return nil
	}
	if len(windows) == 1 {
		return []layoutengine.WindowGeometry{{ID: windows[0], X: 0, Y: 0, Width: width, Height: height}}
	}

	activeID := active
	if !haveActive {
		activeID = windows[len(windows)-1]
	}

	ordered := make([]uint32, 0, len(windows))
	for _, id := range windows {
		if id != activeID {
			ordered = append(ordered, id)
		}
	}
	ordered = append(ordered, activeID)

	out := make([]layoutengine.WindowGeometry, 0, len(ordered))
	for i, id := range ordered {
		offset := i * cascadeOffset
		w := width
		if uint32(offset) < width {
			w = width - uint32(offset)
		}
		h := height
		if uint32(offset) < height {
			h = height - uint32(offset)
		}
		out = append(out, layoutengine.WindowGeometry{ID: id, X: offset, Y: offset, Width: w, Height: h})
	}
	return out
}
