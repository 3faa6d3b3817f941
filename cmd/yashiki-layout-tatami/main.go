// Command yashiki-layout-tatami is a reference layout engine: a
// master-stack tiler. One window (the first in the stacking order
// handed to it) occupies a ratio of the available width on the left;
// every other window splits the remainder in an even vertical stack on
// the right. It speaks the line-delimited JSON protocol defined by
// internal/layoutengine over stdin/stdout (spec.md §7); the algorithm
// itself is explicitly out of scope, only the protocol contract is
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

const (
	defaultRatio = 0.6
	ratioStep    = 0.05
	minRatio     = 0.2
	maxRatio     = 0.8
)

func main() {
	r := wire.NewReader(os.Stdin)
	w := wire.NewWriter(os.Stdout)
	ratio := defaultRatio

	for {
		var msg layoutengine.Message
		if err := r.Decode(&msg); err != nil {
			if err == io.EOF {
				return
			}
			fmt.Fprintf(os.Stderr, "yashiki-layout-tatami: decode: %v\n", err)
			return
		}

		switch msg.Type {
		case layoutengine.KindLayout:
			_ = w.Encode(layoutengine.Result{
				Type:    layoutengine.KindLayout,
				Windows: masterStack(msg.Width, msg.Height, msg.Windows, ratio),
			})

		case layoutengine.KindCommand:
			result := handleCommand(msg.Cmd, msg.Args, &ratio)
			_ = w.Encode(result)

		default:
			_ = w.Encode(layoutengine.Result{Type: layoutengine.KindError, Message: fmt.Sprintf("unexpected message type %q", msg.Type)})
		}
	}
}

func handleCommand(cmd string, args []string, ratio *float64) layoutengine.Result {
	switch cmd {
	case "focus-changed":
		return layoutengine.Result{Type: layoutengine.KindOk}

	case "increase-ratio":
		*ratio = clampRatio(*ratio + ratioStep)
		return layoutengine.Result{Type: layoutengine.KindRetile}

	case "decrease-ratio":
		*ratio = clampRatio(*ratio - ratioStep)
		return layoutengine.Result{Type: layoutengine.KindRetile}

	case "set-ratio":
		if len(args) != 1 {
			return layoutengine.Result{Type: layoutengine.KindError, Message: "set-ratio needs exactly one argument"}
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return layoutengine.Result{Type: layoutengine.KindError, Message: fmt.Sprintf("set-ratio: %v", err)}
		}
		*ratio = clampRatio(v)
		return layoutengine.Result{Type: layoutengine.KindRetile}

	default:
		return layoutengine.Result{Type: layoutengine.KindError, Message: fmt.Sprintf("unknown command %q", cmd)}
	}
}

func clampRatio(v float64) float64 {
	if v < minRatio {
		return minRatio
	}
	if v > maxRatio {
		return maxRatio
	}
	return v
}

// masterStack places windows[0] on the left at width*ratio, and splits
// the remaining windows evenly in a vertical stack filling the rest of
// the width. A single window fills the whole area.
func masterStack(width, height uint32, windows []uint32, ratio float64) []layoutengine.WindowGeometry {
	if len(windows) == 0 {
		return nil
	}
	if len(windows) == 1 {
		return []layoutengine.WindowGeometry{{ID: windows[0], X: 0, Y: 0, Width: width, Height: height}}
	}

	masterWidth := uint32(float64(width) * ratio)
	stackWidth := width - masterWidth
	stackCount := uint32(len(windows) - 1)

	out := make([]layoutengine.WindowGeometry, 0, len(windows))
	out = append(out, layoutengine.WindowGeometry{ID: windows[0], X: 0, Y: 0, Width: masterWidth, Height: height})

	stackHeight := height / stackCount
	for i, id := range windows[1:] {
		y := uint32(i) * stackHeight
		h := stackHeight
		if uint32(i) == stackCount-1 {
			h = height - y // absorb rounding remainder in the last slot
		}
		out = append(out, layoutengine.WindowGeometry{ID: id, X: int(masterWidth), Y: int(y), Width: stackWidth, Height: h})
	}
	return out
}
