// Package model defines the Window and Display entities and their
// invariants (spec §3.1–§3.2).
package model

import (
	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/tag"
)

// WindowID identifies a window, allocated by the platform.
type WindowID uint32

// DisplayID identifies a display, allocated by the platform.
type DisplayID uint32

// ButtonState describes the presence/enablement of a titlebar button.
type ButtonState int

const (
	ButtonStateNone ButtonState = iota
	ButtonStateExists
	ButtonStateEnabled
	ButtonStateDisabled
)

func (b ButtonState) String() string {
	switch b {
	case ButtonStateExists:
		return "exists"
	case ButtonStateEnabled:
		return "enabled"
	case ButtonStateDisabled:
		return "disabled"
	default:
		return "none"
	}
}

// ExtendedAttributes are the accessibility-derived fields used as rule
// inputs (ax id, subrole, window level, button states). WindowLevel 0
// means "normal".
type ExtendedAttributes struct {
	AXID             string
	Subrole          string
	WindowLevel      int
	CloseButton      ButtonState
	FullscreenButton ButtonState
	MinimizeButton   ButtonState
	ZoomButton       ButtonState
}

// Window is a managed window and its classification/geometry state.
type Window struct {
	ID      WindowID
	PID     int
	AppName string
	AppID   string // empty means absent
	Title   string

	Ext ExtendedAttributes

	Tags      tag.Tag
	DisplayID DisplayID

	Frame      geom.Rect
	SavedFrame *geom.Rect // non-nil iff hidden

	IsFloating   bool
	IsFullscreen bool

	OrphanedFrom *DisplayID // non-nil while the owning display is gone
}

// IsTiled reports whether the window participates in tiling layout.
func (w *Window) IsTiled() bool {
	return !w.IsFloating && !w.IsFullscreen
}

// IsHidden reports whether the window is parked off-screen.
func (w *Window) IsHidden() bool {
	return w.SavedFrame != nil
}

// Center returns the window frame's midpoint.
func (w *Window) Center() (x, y int) {
	return w.Frame.Center()
}
