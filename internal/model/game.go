package model

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ErrInvalidMove is returned by MakeMove when the move cannot be played. The game is left
// untouched.
var ErrInvalidMove = errors.New("invalid move")

type Status string

const (
	StatusActive    Status = "active"
	StatusCheck     Status = "check"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
)

// Game owns the live board, the side to move and the snapshots of every board that
// preceded a move. It is not safe for concurrent use; callers serving several goroutines
// must lock around it.
type Game struct {
	board   Board
	turn    TeamColor
	history []Board
}

// NewGame returns a game in the standard starting position with white to move.
func NewGame() *Game {
	return &Game{
		board: NewStandardBoard(),
		turn:  White,
	}
}

func (g *Game) SetTeamTurn(color TeamColor) {
	g.turn = color
}

func (g *Game) GetTeamTurn() TeamColor {
	return g.turn
}

// SetBoard replaces the live board with a copy of board.
func (g *Game) SetBoard(board Board) {
	g.board = board.Copy()
}

// GetBoard returns a copy of the live board.
func (g *Game) GetBoard() Board {
	return g.board.Copy()
}

// History returns copies of the boards that preceded each move, oldest first.
func (g *Game) History() []Board {
	out := make([]Board, len(g.history))
	for i := range g.history {
		out[i] = g.history[i].Copy()
	}
	return out
}

// Copy returns an independent game with the same board, turn and history.
func (g *Game) Copy() *Game {
	return &Game{
		board:   g.board.Copy(),
		turn:    g.turn,
		history: g.History(),
	}
}

// ValidMoves returns the legal moves of the piece at pos. The boolean is false when the
// square is empty; an occupied square with no legal moves yields an empty, non-nil slice.
func (g *Game) ValidMoves(pos Position) ([]Move, bool) {
	return validMoves(&g.board, pos)
}

func validMoves(board *Board, pos Position) ([]Move, bool) {
	piece, ok := board.GetPiece(pos)
	if !ok {
		return nil, false
	}
	legal := []Move{}
	for _, move := range piece.PieceMoves(board, pos) {
		if !suicide(board, piece, move) {
			legal = append(legal, move)
		}
	}
	return legal, true
}

// suicide reports whether playing move leaves the mover's own king attacked.
func suicide(board *Board, piece Piece, move Move) bool {
	potential := board.Copy()
	apply(&potential, piece, move)
	return InCheck(&potential, piece.Color)
}

// apply moves piece from move.Start to move.End, promoting it when the move says so.
func apply(board *Board, piece Piece, move Move) {
	if move.Promotion != "" {
		piece = NewPiece(piece.Color, move.Promotion)
	}
	board.RemovePiece(move.Start)
	board.AddPiece(move.End, piece)
}

// LegalMoves returns every legal move of color, scanning row 1 to 8.
func (g *Game) LegalMoves(color TeamColor) []Move {
	moves := []Move{}
	for _, sq := range g.board.Pieces() {
		if sq.Piece.Color != color {
			continue
		}
		pieceMoves, _ := g.ValidMoves(sq.Position)
		moves = append(moves, pieceMoves...)
	}
	return moves
}

// MakeMove plays move for the side to move. It fails with ErrInvalidMove when there is no
// piece on the start square, the piece belongs to the other side, or the move is not legal.
func (g *Game) MakeMove(move Move) error {
	piece, ok := g.board.GetPiece(move.Start)
	if !ok {
		return fmt.Errorf("%w: no piece at %s", ErrInvalidMove, move.Start)
	}
	if piece.Color != g.turn {
		return fmt.Errorf("%w: %s to move, piece at %s is %s", ErrInvalidMove, g.turn, move.Start, piece.Color)
	}
	legal, _ := g.ValidMoves(move.Start)
	if !slices.Contains(legal, move) {
		return fmt.Errorf("%w: %s is not legal", ErrInvalidMove, move)
	}

	newBoard := g.board.Copy()
	apply(&newBoard, piece, move)
	g.history = append(g.history, g.board)
	g.board = newBoard
	g.switchTurn()
	return nil
}

func (g *Game) switchTurn() {
	g.turn = g.turn.Other()
}

// IsInCheck reports whether color's king is attacked on the live board.
func (g *Game) IsInCheck(color TeamColor) bool {
	return InCheck(&g.board, color)
}

// InCheck reports whether color's king is attacked on board. A side without a king is
// never in check.
func InCheck(board *Board, color TeamColor) bool {
	kingPos, ok := board.findKing(color)
	if !ok {
		return false
	}
	return isSquareAttacked(board, color.Other(), kingPos)
}

func isSquareAttacked(board *Board, attackingColor TeamColor, target Position) bool {
	for _, sq := range board.Pieces() {
		if sq.Piece.Color != attackingColor {
			continue
		}
		for _, m := range sq.Piece.attacks(board, sq.Position) {
			if m.End == target {
				return true
			}
		}
	}
	return false
}

func (g *Game) IsInCheckmate(color TeamColor) bool {
	return g.IsInCheck(color) && g.isNoLegalMoves(color)
}

func (g *Game) IsInStalemate(color TeamColor) bool {
	return !g.IsInCheck(color) && g.isNoLegalMoves(color)
}

func (g *Game) isNoLegalMoves(color TeamColor) bool {
	for _, sq := range g.board.Pieces() {
		if sq.Piece.Color != color {
			continue
		}
		if moves, _ := g.ValidMoves(sq.Position); len(moves) > 0 {
			return false
		}
	}
	return true
}

// Status resolves the position for the side to move.
func (g *Game) Status() Status {
	inCheck := g.IsInCheck(g.turn)
	noMoves := g.isNoLegalMoves(g.turn)
	switch {
	case inCheck && noMoves:
		return StatusCheckmate
	case noMoves:
		return StatusStalemate
	case inCheck:
		return StatusCheck
	}
	return StatusActive
}
