package model

import (
	"testing"

	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/tag"
)

func TestWindowIsTiled(t *testing.T) {
	w := &Window{}
	if !w.IsTiled() {
		t.Fatalf("default window should be tiled")
	}
	w.IsFloating = true
	if w.IsTiled() {
		t.Fatalf("floating window should not be tiled")
	}
	w.IsFloating = false
	w.IsFullscreen = true
	if w.IsTiled() {
		t.Fatalf("fullscreen window should not be tiled")
	}
}

func TestWindowIsHidden(t *testing.T) {
	w := &Window{Frame: geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	if w.IsHidden() {
		t.Fatalf("window with nil SavedFrame should not be hidden")
	}
	saved := w.Frame
	w.SavedFrame = &saved
	if !w.IsHidden() {
		t.Fatalf("window with SavedFrame set should be hidden")
	}
}

func TestDisplayWindowOrder(t *testing.T) {
	d := NewDisplay(1, "Built-in", geom.Rect{Width: 1920, Height: 1080}, true)
	if d.VisibleTags != tag.New(1) {
		t.Fatalf("new display should default to tag 1 visible")
	}
	d.AddToWindowOrder(100)
	d.AddToWindowOrder(101)
	d.AddToWindowOrder(100) // no-op, already present
	if len(d.WindowOrder) != 2 {
		t.Fatalf("expected 2 entries, got %v", d.WindowOrder)
	}
	d.RemoveFromWindowOrder(100)
	if len(d.WindowOrder) != 1 || d.WindowOrder[0] != 101 {
		t.Fatalf("expected only 101 to remain, got %v", d.WindowOrder)
	}
}
