package model

import (
	"encoding/json"
	"testing"
)

func TestStandardSetupSymmetry(t *testing.T) {
	b := NewStandardBoard()
	pieces := b.Pieces()
	if len(pieces) != 32 {
		t.Fatalf("standard setup has %d pieces, want 32", len(pieces))
	}
	for _, sq := range pieces {
		mirror := NewPosition(9-sq.Position.Row, sq.Position.Col)
		other, ok := b.GetPiece(mirror)
		if !ok {
			t.Fatalf("no mirror piece for %s at %s", sq.Position, mirror)
		}
		if other.Type != sq.Piece.Type || other.Color != sq.Piece.Color.Other() {
			t.Errorf("mirror of %v at %s is %v", sq.Piece, sq.Position, other)
		}
	}
}

func TestStandardSetupSquares(t *testing.T) {
	b := NewStandardBoard()
	tests := []struct {
		square string
		want   Piece
	}{
		{"e1", NewPiece(White, King)},
		{"d1", NewPiece(White, Queen)},
		{"a1", NewPiece(White, Rook)},
		{"g1", NewPiece(White, Knight)},
		{"c8", NewPiece(Black, Bishop)},
		{"e8", NewPiece(Black, King)},
		{"h7", NewPiece(Black, Pawn)},
		{"b2", NewPiece(White, Pawn)},
	}
	for _, tc := range tests {
		t.Run(tc.square, func(t *testing.T) {
			pos, err := ParsePosition(tc.square)
			if err != nil {
				t.Fatalf("ParsePosition(%q): %v", tc.square, err)
			}
			got, ok := b.GetPiece(pos)
			if !ok || got != tc.want {
				t.Errorf("GetPiece(%s) = %v, %v; want %v", tc.square, got, ok, tc.want)
			}
		})
	}
	for row := 3; row <= 6; row++ {
		for col := 1; col <= 8; col++ {
			if _, ok := b.GetPiece(NewPosition(row, col)); ok {
				t.Errorf("expected (%d,%d) to be empty", row, col)
			}
		}
	}
}

func TestBoardCopyIsIndependent(t *testing.T) {
	b := NewStandardBoard()
	c := b.Copy()
	c.RemovePiece(NewPosition(2, 5))
	c.AddPiece(NewPosition(4, 5), NewPiece(White, Pawn))

	if _, ok := b.GetPiece(NewPosition(2, 5)); !ok {
		t.Fatalf("removing from the copy emptied the original")
	}
	if _, ok := b.GetPiece(NewPosition(4, 5)); ok {
		t.Fatalf("adding to the copy changed the original")
	}
	if b.Equal(&c) {
		t.Fatalf("copy and original should differ after mutation")
	}
}

func TestBoardAddRemove(t *testing.T) {
	b := NewBoard()
	pos := NewPosition(5, 5)
	b.AddPiece(pos, NewPiece(Black, Queen))
	if p, ok := b.GetPiece(pos); !ok || p != NewPiece(Black, Queen) {
		t.Fatalf("GetPiece after AddPiece = %v, %v", p, ok)
	}
	b.AddPiece(pos, NewPiece(White, Knight))
	if p, _ := b.GetPiece(pos); p != NewPiece(White, Knight) {
		t.Fatalf("AddPiece should replace the occupant, got %v", p)
	}
	b.RemovePiece(pos)
	if _, ok := b.GetPiece(pos); ok {
		t.Fatalf("square still occupied after RemovePiece")
	}
	if _, ok := b.GetPiece(NewPosition(0, 5)); ok {
		t.Fatalf("off-board lookup reported a piece")
	}
}

func TestBoardString(t *testing.T) {
	b := NewStandardBoard()
	want := "rnbqkbnr\npppppppp\n........\n........\n........\n........\nPPPPPPPP\nRNBQKBNR\n"
	if got := b.String(); got != want {
		t.Fatalf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestBoardJSON(t *testing.T) {
	b := NewStandardBoard()
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Board
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Equal(&b) {
		t.Fatalf("decoded board differs:\n%s", decoded.String())
	}
}
