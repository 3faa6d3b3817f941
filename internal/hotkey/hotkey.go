// Package hotkey implements the platform-agnostic half of hotkey
// bindings: parsing/formatting a (modifier set, key) spec and the
// bind/unbind/list store. The event-tap capture mechanism that turns
// real keypresses into Command values stays out of scope (spec.md §1);
// this package only owns the binding table the command processor's
// Bind/Unbind/ListBindings commands mutate.
package hotkey

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModCmd Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModShift
)

var modifierAliases = map[string]Modifiers{
	"cmd":     ModCmd,
	"command": ModCmd,
	"super":   ModCmd,
	"win":     ModCmd,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
}

// canonicalModifierOrder fixes the order modifiers are formatted in,
// independent of the order they were parsed in.
var canonicalModifierOrder = []struct {
	mod  Modifiers
	name string
}{
	{ModCmd, "cmd"},
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
}

// Hotkey is a canonicalized modifier set plus key name.
type Hotkey struct {
	Modifiers Modifiers
	Key       string // canonical uppercase key name, e.g. "J", "SPACE"
}

// Parse accepts a "+"-delimited spec such as "Cmd+Shift+j" or
// "super+alt+Return", canonicalizing modifier aliases (via strcase, so
// "Cmd"/"CMD"/"cmd" all normalize to the same comparison form before
// alias lookup) and upper-casing the trailing key token.
func Parse(spec string) (Hotkey, error) {
	parts := strings.Split(spec, "+")
	if len(parts) < 2 {
		return Hotkey{}, fmt.Errorf("hotkey: %q needs at least one modifier and a key", spec)
	}
	var mods Modifiers
	for _, p := range parts[:len(parts)-1] {
		norm := strcase.ToSnake(strings.TrimSpace(p))
		m, ok := modifierAliases[norm]
		if !ok {
			return Hotkey{}, fmt.Errorf("hotkey: unknown modifier %q in %q", p, spec)
		}
		mods |= m
	}
	key := strings.ToUpper(strings.TrimSpace(parts[len(parts)-1]))
	if key == "" {
		return Hotkey{}, fmt.Errorf("hotkey: empty key in %q", spec)
	}
	return Hotkey{Modifiers: mods, Key: key}, nil
}

// String formats h back into canonical "cmd+shift+J" form, modifiers
// in the fixed canonicalModifierOrder.
func (h Hotkey) String() string {
	var parts []string
	for _, m := range canonicalModifierOrder {
		if h.Modifiers&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, h.Key)
	return strings.Join(parts, "+")
}

// Binding pairs a hotkey with the raw JSON-encoded Command it invokes.
// The command payload is kept opaque here (rather than importing
// internal/command) so this package has no dependency on the wire
// command vocabulary; internal/command decodes it when dispatching a
// fired hotkey and re-encodes it when handling Bind/ListBindings.
type Binding struct {
	Hotkey  Hotkey          `json:"hotkey"`
	Command json.RawMessage `json:"command"`
}

// Store owns the bind/unbind/list table, keyed by the hotkey's
// canonical string form so re-binding the same key+modifiers replaces
// the prior binding instead of accumulating duplicates.
type Store struct {
	bindings map[string]Binding
}

// NewStore returns an empty binding store.
func NewStore() *Store {
	return &Store{bindings: make(map[string]Binding)}
}

// Bind registers (or replaces) the command bound to h.
func (s *Store) Bind(h Hotkey, cmd json.RawMessage) {
	s.bindings[h.String()] = Binding{Hotkey: h, Command: cmd}
}

// Unbind removes h's binding, reporting whether one existed.
func (s *Store) Unbind(h Hotkey) bool {
	key := h.String()
	if _, ok := s.bindings[key]; !ok {
		return false
	}
	delete(s.bindings, key)
	return true
}

// Lookup returns the command bound to h, if any.
func (s *Store) Lookup(h Hotkey) (json.RawMessage, bool) {
	b, ok := s.bindings[h.String()]
	return b.Command, ok
}

// List returns every binding, sorted by canonical hotkey string for
// deterministic ListBindings responses.
func (s *Store) List() []Binding {
	out := make([]Binding, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hotkey.String() < out[j].Hotkey.String() })
	return out
}
