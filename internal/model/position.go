package model

import (
	"errors"
	"fmt"
)

var ErrInvalidPosition = errors.New("invalid position")

// Position is a board coordinate. Rows and columns run 1..8; row 1 is white's back
// rank and column 1 is the a-file. Off-board values may exist transiently but are never
// stored on a Board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewPosition(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) IsOnBoard() bool {
	return p.Row >= 1 && p.Row <= 8 && p.Col >= 1 && p.Col <= 8
}

func (p Position) Offset(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

// String returns the square in algebraic notation, e.g. "e4".
func (p Position) String() string {
	if !p.IsOnBoard() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col-1, p.Row)
}

// ParsePosition reads an algebraic square such as "e4".
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	p := Position{Row: int(s[1]-'1') + 1, Col: int(s[0]-'a') + 1}
	if !p.IsOnBoard() {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return p, nil
}
