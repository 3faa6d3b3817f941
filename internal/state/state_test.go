package state

import (
	"testing"

	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/tag"
)

func newTestDisplay(s *State, id model.DisplayID, x, y, w, h int, main bool) {
	s.Displays[id] = model.NewDisplay(id, "d", geom.Rect{X: x, Y: y, Width: w, Height: h}, main)
}

func TestHidePositionForDisplayPicksBottomRightWhenFree(t *testing.T) {
	s := New()
	newTestDisplay(s, 1, 0, 0, 1000, 800, true)
	x, y := s.HidePositionForDisplay(1)
	if x != 1000 || y != 800 {
		t.Fatalf("expected bottom-right corner (1000,800), got (%d,%d)", x, y)
	}
}

func TestHidePositionForDisplaySkipsCornerInsideOtherDisplay(t *testing.T) {
	s := New()
	newTestDisplay(s, 1, 0, 0, 1000, 800, true)
	// Second display sits exactly where display 1's bottom-right corner
	// would otherwise land.
	newTestDisplay(s, 2, 1000, 800, 1000, 800, false)
	x, y := s.HidePositionForDisplay(1)
	if x == 1000 && y == 800 {
		t.Fatalf("expected a corner other than bottom-right, got (%d,%d)", x, y)
	}
}

func TestGlobalHidePositionIsMaxCornerAcrossDisplays(t *testing.T) {
	s := New()
	newTestDisplay(s, 1, 0, 0, 1000, 800, true)
	newTestDisplay(s, 2, 1000, 0, 500, 1200, false)
	x, y := s.GlobalHidePosition()
	if x != 1500 || y != 1200 {
		t.Fatalf("expected (1500,1200), got (%d,%d)", x, y)
	}
}

func TestViewTagsOnDisplayHidesAndShowsWindows(t *testing.T) {
	s := New()
	newTestDisplay(s, 1, 0, 0, 1000, 800, true)
	w := &model.Window{ID: 1, DisplayID: 1, Tags: tag.New(2), Frame: geom.Rect{X: 10, Y: 10, Width: 100, Height: 100}}
	s.Windows[1] = w

	s.ViewTagsOnDisplay(1, tag.New(2))
	if w.IsHidden() {
		t.Fatalf("window on the now-visible tag should not be hidden")
	}

	s.ViewTagsOnDisplay(1, tag.New(1))
	if !w.IsHidden() {
		t.Fatalf("window should be hidden once its tag is no longer visible")
	}

	s.ViewTagsOnDisplay(1, tag.New(2))
	if w.IsHidden() {
		t.Fatalf("window should be restored once its tag is visible again")
	}
	if w.Frame.X != 10 || w.Frame.Y != 10 {
		t.Fatalf("restored window should return to its saved frame, got %+v", w.Frame)
	}
}

func TestToggleTagsOnDisplayRejectsEmptyResult(t *testing.T) {
	s := New()
	newTestDisplay(s, 1, 0, 0, 1000, 800, true)
	before := s.Displays[1].VisibleTags
	s.ToggleTagsOnDisplay(1, before)
	if s.Displays[1].VisibleTags != before {
		t.Fatalf("toggling to an empty set must be rejected")
	}
}

func TestAddWindowHidesNewWindowNotVisibleOnItsDisplay(t *testing.T) {
	s := New()
	newTestDisplay(s, 1, 0, 0, 1000, 800, true)
	w := &model.Window{ID: 1, DisplayID: 1, Tags: tag.New(5), Frame: geom.Rect{X: 10, Y: 10, Width: 100, Height: 100}}
	moves := s.AddWindow(w)
	if !w.IsHidden() {
		t.Fatalf("window whose tag isn't visible must be hidden on creation")
	}
	if len(moves) != 1 {
		t.Fatalf("expected exactly one hide move, got %d", len(moves))
	}
}

func TestHandleDisplayChangeOrphansAndRestoresWindows(t *testing.T) {
	s := New()
	newTestDisplay(s, 1, 0, 0, 1000, 800, true)
	newTestDisplay(s, 2, 1000, 0, 1000, 800, false)
	w := &model.Window{ID: 1, DisplayID: 2, Tags: tag.New(1), IsFloating: true}
	s.Windows[1] = w

	// Display 2 disconnects.
	s.HandleDisplayChange([]platform.DisplayInfo{
		{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true},
	})
	if w.OrphanedFrom == nil || *w.OrphanedFrom != 2 {
		t.Fatalf("expected window to be orphaned from display 2, got %+v", w.OrphanedFrom)
	}
	if w.DisplayID != 1 {
		t.Fatalf("expected window reassigned to fallback display 1, got %d", w.DisplayID)
	}

	// Display 2 reconnects.
	s.HandleDisplayChange([]platform.DisplayInfo{
		{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true},
		{ID: 2, Frame: geom.Bounds{X: 1000, Y: 0, Width: 1000, Height: 800}, IsMain: false},
	})
	if w.OrphanedFrom != nil {
		t.Fatalf("expected window no longer orphaned after its display returned")
	}
	if w.DisplayID != 2 {
		t.Fatalf("expected window restored to display 2, got %d", w.DisplayID)
	}
}
