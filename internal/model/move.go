package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidMoveNotation = errors.New("invalid move notation")

// Move is a single piece displacement. Promotion is empty unless a pawn lands on the
// far rank.
type Move struct {
	Start     Position  `json:"from"`
	End       Position  `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

func NewMove(start, end Position, promotion PieceType) Move {
	return Move{Start: start, End: end, Promotion: promotion}
}

// String returns the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	return m.Start.String() + m.End.String() + strings.ToLower(m.Promotion.letter())
}

// ParseMove reads coordinate notation as produced by Move.String.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMoveNotation, s)
	}
	start, err := ParsePosition(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMoveNotation, s)
	}
	end, err := ParsePosition(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMoveNotation, s)
	}
	m := Move{Start: start, End: end}
	if len(s) == 5 {
		promo, ok := pieceTypeFromLetter(s[4])
		if !ok || promo == King || promo == Pawn {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidMoveNotation, s)
		}
		m.Promotion = promo
	}
	return m, nil
}

// Ply is one applied move as recorded by a game session.
type Ply struct {
	Move          Move   `json:"move"`
	Piece         Piece  `json:"piece"`
	CapturedPiece *Piece `json:"capturedPiece"`
	Notation      string `json:"notation"`
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}
