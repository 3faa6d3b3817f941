package hotkey

import "testing"

func TestParseCanonicalizesModifierAliases(t *testing.T) {
	a, err := Parse("Cmd+Shift+j")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := Parse("command+SHIFT+J")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.String() != b.String() {
		t.Fatalf("expected equivalent specs to canonicalize identically, got %q and %q", a.String(), b.String())
	}
	if a.String() != "cmd+shift+J" {
		t.Fatalf("unexpected canonical form %q", a.String())
	}
}

func TestParseRejectsMissingModifier(t *testing.T) {
	if _, err := Parse("j"); err == nil {
		t.Fatalf("expected error for a spec with no modifier")
	}
}

func TestParseRejectsUnknownModifier(t *testing.T) {
	if _, err := Parse("meta+j"); err == nil {
		t.Fatalf("expected error for an unrecognized modifier alias")
	}
}

func TestStoreBindUnbindList(t *testing.T) {
	s := NewStore()
	h1, _ := Parse("cmd+j")
	h2, _ := Parse("cmd+k")
	s.Bind(h1, []byte(`{"type":"window_focus","direction":"next"}`))
	s.Bind(h2, []byte(`{"type":"window_focus","direction":"prev"}`))

	if list := s.List(); len(list) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(list))
	}
	if cmd, ok := s.Lookup(h1); !ok || string(cmd) != `{"type":"window_focus","direction":"next"}` {
		t.Fatalf("lookup mismatch: %v %v", cmd, ok)
	}
	if !s.Unbind(h1) {
		t.Fatalf("expected unbind to report success")
	}
	if s.Unbind(h1) {
		t.Fatalf("expected second unbind of the same key to report false")
	}
	if list := s.List(); len(list) != 1 {
		t.Fatalf("expected 1 binding after unbind, got %d", len(list))
	}
}

func TestBindReplacesExistingBindingForSameKey(t *testing.T) {
	s := NewStore()
	h, _ := Parse("cmd+j")
	s.Bind(h, []byte(`{"type":"quit"}`))
	s.Bind(h, []byte(`{"type":"retile"}`))
	if list := s.List(); len(list) != 1 {
		t.Fatalf("expected re-binding to replace, got %d entries", len(list))
	}
	cmd, _ := s.Lookup(h)
	if string(cmd) != `{"type":"retile"}` {
		t.Fatalf("expected latest binding to win, got %s", cmd)
	}
}
