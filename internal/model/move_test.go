package model

import (
	"errors"
	"testing"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"a1", Position{1, 1}},
		{"e4", Position{4, 5}},
		{"h8", Position{8, 8}},
	}
	for _, tc := range tests {
		got, err := ParsePosition(tc.in)
		if err != nil {
			t.Fatalf("ParsePosition(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParsePosition(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if got.String() != tc.in {
			t.Errorf("String() = %q, want %q", got.String(), tc.in)
		}
	}
	for _, bad := range []string{"", "e", "i1", "a9", "a0", "e44"} {
		if _, err := ParsePosition(bad); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("ParsePosition(%q) err = %v, want ErrInvalidPosition", bad, err)
		}
	}
}

func TestPositionIsOnBoard(t *testing.T) {
	if !NewPosition(1, 8).IsOnBoard() || !NewPosition(8, 1).IsOnBoard() {
		t.Fatalf("corner squares reported off board")
	}
	for _, p := range []Position{{0, 1}, {9, 1}, {1, 0}, {1, 9}, {-1, -1}} {
		if p.IsOnBoard() {
			t.Errorf("%v reported on board", p)
		}
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e7e8q")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	want := NewMove(NewPosition(7, 5), NewPosition(8, 5), Queen)
	if m != want {
		t.Fatalf("ParseMove(e7e8q) = %+v, want %+v", m, want)
	}
	if m.String() != "e7e8q" {
		t.Errorf("String() = %q", m.String())
	}
	if got, _ := ParseMove("g1f3"); got.String() != "g1f3" || got.Promotion != "" {
		t.Errorf("ParseMove(g1f3) = %+v", got)
	}
	for _, bad := range []string{"", "e2", "e2e", "e2e9", "e7e8k", "e7e8p", "e7e8x", "e2e4qq"} {
		if _, err := ParseMove(bad); !errors.Is(err, ErrInvalidMoveNotation) {
			t.Errorf("ParseMove(%q) err = %v, want ErrInvalidMoveNotation", bad, err)
		}
	}
}

func TestMoveEquality(t *testing.T) {
	a := NewMove(NewPosition(7, 1), NewPosition(8, 1), Queen)
	b := NewMove(NewPosition(7, 1), NewPosition(8, 1), Queen)
	c := NewMove(NewPosition(7, 1), NewPosition(8, 1), Knight)
	if a != b {
		t.Errorf("identical moves compare unequal")
	}
	if a == c {
		t.Errorf("moves differing in promotion compare equal")
	}
}
