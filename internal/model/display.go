package model

import (
	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/tag"
)

// Display is a physical monitor and its per-display tiling state.
type Display struct {
	ID     DisplayID
	Name   string
	Frame  geom.Rect // global coords, menu-bar reserve already subtracted
	IsMain bool

	VisibleTags         tag.Tag
	PreviousVisibleTags tag.Tag

	CurrentLayout  string // empty means "unset, use State.DefaultLayout"
	PreviousLayout string

	// WindowOrder is the tiling order of tiled window ids on this
	// display; it contains exactly the ids whose DisplayID equals
	// this display's id and which pass the tiled filter.
	WindowOrder []WindowID
}

// NewDisplay constructs a display with tag 1 visible by default.
func NewDisplay(id DisplayID, name string, frame geom.Rect, isMain bool) *Display {
	return &Display{
		ID:          id,
		Name:        name,
		Frame:       frame,
		IsMain:      isMain,
		VisibleTags: tag.New(1),
	}
}

// AddToWindowOrder appends id if not already present.
func (d *Display) AddToWindowOrder(id WindowID) {
	for _, existing := range d.WindowOrder {
		if existing == id {
			return
		}
	}
	d.WindowOrder = append(d.WindowOrder, id)
}

// RemoveFromWindowOrder removes id if present.
func (d *Display) RemoveFromWindowOrder(id WindowID) {
	for i, existing := range d.WindowOrder {
		if existing == id {
			d.WindowOrder = append(d.WindowOrder[:i], d.WindowOrder[i+1:]...)
			return
		}
	}
}
