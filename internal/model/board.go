package model

import (
	"encoding/json"
	"strings"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// PromotionPieces are the piece types a pawn may become on the far rank, in the order
// promotion moves are generated.
var PromotionPieces = []PieceType{Queen, Rook, Knight, Bishop}

// letter is the upper-case FEN letter for the piece type.
func (p PieceType) letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

func pieceTypeFromLetter(c byte) (PieceType, bool) {
	switch c {
	case 'k', 'K':
		return King, true
	case 'q', 'Q':
		return Queen, true
	case 'r', 'R':
		return Rook, true
	case 'b', 'B':
		return Bishop, true
	case 'n', 'N':
		return Knight, true
	case 'p', 'P':
		return Pawn, true
	}
	return "", false
}

// Board is an 8x8 grid of optional pieces. It is a value type: assigning or copying a
// Board yields an independent board. Pieces are immutable, so sharing them between copies
// never leaks mutation.
type Board struct {
	squares [8][8]*Piece
}

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// NewStandardBoard returns a board in the standard starting arrangement.
func NewStandardBoard() Board {
	b := Board{}
	b.ResetToStandardSetup()
	return b
}

// GetPiece returns the piece at pos and whether the square is occupied.
func (b *Board) GetPiece(pos Position) (Piece, bool) {
	if !pos.IsOnBoard() {
		return Piece{}, false
	}
	p := b.squares[pos.Row-1][pos.Col-1]
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

func (b *Board) AddPiece(pos Position, piece Piece) {
	p := piece
	b.squares[pos.Row-1][pos.Col-1] = &p
}

func (b *Board) RemovePiece(pos Position) {
	b.squares[pos.Row-1][pos.Col-1] = nil
}

// Copy returns an independent copy of the board.
func (b *Board) Copy() Board {
	return Board{squares: b.squares}
}

// Clear empties every square.
func (b *Board) Clear() {
	b.squares = [8][8]*Piece{}
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// ResetToStandardSetup clears the board and places both armies on ranks 1-2 and 7-8.
func (b *Board) ResetToStandardSetup() {
	b.Clear()
	for col := 1; col <= 8; col++ {
		b.AddPiece(NewPosition(1, col), NewPiece(White, backRank[col-1]))
		b.AddPiece(NewPosition(2, col), NewPiece(White, Pawn))
		b.AddPiece(NewPosition(7, col), NewPiece(Black, Pawn))
		b.AddPiece(NewPosition(8, col), NewPiece(Black, backRank[col-1]))
	}
}

// Square is an occupied square as yielded by Pieces.
type Square struct {
	Position Position `json:"position"`
	Piece    Piece    `json:"piece"`
}

// Pieces lists the occupied squares, row 1 to 8 and column 1 to 8 within a row.
func (b *Board) Pieces() []Square {
	squares := make([]Square, 0, 32)
	for row := 1; row <= 8; row++ {
		for col := 1; col <= 8; col++ {
			if p := b.squares[row-1][col-1]; p != nil {
				squares = append(squares, Square{Position: NewPosition(row, col), Piece: *p})
			}
		}
	}
	return squares
}

// findKing returns the square of color's king, if there is one.
func (b *Board) findKing(color TeamColor) (Position, bool) {
	for _, sq := range b.Pieces() {
		if sq.Piece.Type == King && sq.Piece.Color == color {
			return sq.Position, true
		}
	}
	return Position{}, false
}

func (b *Board) Equal(other *Board) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			x, y := b.squares[row][col], other.squares[row][col]
			if (x == nil) != (y == nil) || (x != nil && *x != *y) {
				return false
			}
		}
	}
	return true
}

// String draws the board with rank 8 on top, using FEN letters and '.' for empty squares.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 8; row >= 1; row-- {
		for col := 1; col <= 8; col++ {
			p, ok := b.GetPiece(NewPosition(row, col))
			if !ok {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(p.Letter())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// MarshalJSON encodes the board as an 8x8 grid indexed [row-1][col-1]; empty squares are null.
func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.squares)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var squares [8][8]*Piece
	if err := json.Unmarshal(data, &squares); err != nil {
		return err
	}
	b.squares = squares
	return nil
}
