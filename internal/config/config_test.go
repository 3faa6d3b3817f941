package config

import "testing"

func TestFromArgsForms(t *testing.T) {
	if g, ok := FromArgs([]string{"10"}); !ok || g != (OuterGap{10, 10, 10, 10}) {
		t.Fatalf("single-arg form failed: %+v, %v", g, ok)
	}
	if g, ok := FromArgs([]string{"10", "20"}); !ok || g != (OuterGap{10, 20, 10, 20}) {
		t.Fatalf("two-arg form failed: %+v, %v", g, ok)
	}
	if g, ok := FromArgs([]string{"1", "2", "3", "4"}); !ok || g != (OuterGap{1, 2, 3, 4}) {
		t.Fatalf("four-arg form failed: %+v, %v", g, ok)
	}
	if _, ok := FromArgs([]string{"1", "2", "3"}); ok {
		t.Fatalf("three-arg form should be rejected")
	}
	if _, ok := FromArgs([]string{"abc"}); ok {
		t.Fatalf("non-numeric arg should be rejected")
	}
}

func TestHorizontalVertical(t *testing.T) {
	g := OuterGap{Top: 1, Right: 2, Bottom: 3, Left: 4}
	if g.Horizontal() != 6 {
		t.Fatalf("Horizontal() = %d, want 6", g.Horizontal())
	}
	if g.Vertical() != 4 {
		t.Fatalf("Vertical() = %d, want 4", g.Vertical())
	}
}

func TestAddExecPath(t *testing.T) {
	if got := AddExecPath("", "/a", true); got != "/a" {
		t.Fatalf("empty existing should be replaced outright, got %q", got)
	}
	if got := AddExecPath("/a", "/b", true); got != "/a:/b" {
		t.Fatalf("append=true should append, got %q", got)
	}
	if got := AddExecPath("/a", "/b", false); got != "/b:/a" {
		t.Fatalf("append=false should prepend, got %q", got)
	}
}
