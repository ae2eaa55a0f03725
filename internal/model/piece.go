package model

import "strings"

// Piece is an immutable (color, type) pair. Two pieces are equal when both fields match.
type Piece struct {
	Color TeamColor `json:"color"`
	Type  PieceType `json:"type"`
}

func NewPiece(color TeamColor, pieceType PieceType) Piece {
	return Piece{Color: color, Type: pieceType}
}

// Letter returns the FEN letter: upper case for white, lower case for black.
func (p Piece) Letter() string {
	if p.Color == Black {
		return strings.ToLower(p.Type.letter())
	}
	return p.Type.letter()
}

// PieceMoves returns the pseudo-legal moves of the piece standing on from. They respect
// geometry and occupancy but may leave the mover's own king attacked.
func (p Piece) PieceMoves(board *Board, from Position) []Move {
	return p.Type.mover().moves(board, from, p.Color, false)
}

// attacks is PieceMoves in attack mode: a square holding the enemy king counts as a
// destination, which is what check detection needs.
func (p Piece) attacks(board *Board, from Position) []Move {
	return p.Type.mover().moves(board, from, p.Color, true)
}

// mover generates moves for one kind of piece movement.
type mover interface {
	moves(board *Board, from Position, color TeamColor, attack bool) []Move
}

type direction struct {
	dRow, dCol int
}

var (
	orthogonals = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonals   = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allAround   = append(append([]direction{}, orthogonals...), diagonals...)
	knightJumps = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

var (
	bishopMover mover = slider{dirs: diagonals}
	rookMover   mover = slider{dirs: orthogonals}
	queenMover  mover = slider{dirs: allAround}
	knightMover mover = leaper{offsets: knightJumps}
	kingMover   mover = leaper{offsets: allAround}
	pawnsMover  mover = pawnMover{}
)

func (p PieceType) mover() mover {
	switch p {
	case Bishop:
		return bishopMover
	case Rook:
		return rookMover
	case Queen:
		return queenMover
	case Knight:
		return knightMover
	case King:
		return kingMover
	case Pawn:
		return pawnsMover
	}
	return noMover{}
}

type noMover struct{}

func (noMover) moves(*Board, Position, TeamColor, bool) []Move {
	return nil
}

type squareKind int

const (
	squareInvalid squareKind = iota
	squareEmpty
	squareCapture
)

// classify applies the shared destination rule for every piece except pawns. Off-board
// and friendly squares are invalid. An enemy king is invalid too, unless attack is set.
func classify(board *Board, target Position, color TeamColor, attack bool) squareKind {
	if !target.IsOnBoard() {
		return squareInvalid
	}
	occupant, ok := board.GetPiece(target)
	if !ok {
		return squareEmpty
	}
	if occupant.Color == color {
		return squareInvalid
	}
	if occupant.Type == King && !attack {
		return squareInvalid
	}
	return squareCapture
}

// slider walks each ray until it leaves the board or meets a piece.
type slider struct {
	dirs []direction
}

func (s slider) moves(board *Board, from Position, color TeamColor, attack bool) []Move {
	moves := []Move{}
	for _, dir := range s.dirs {
		target := from.Offset(dir.dRow, dir.dCol)
		for {
			kind := classify(board, target, color, attack)
			if kind != squareInvalid {
				moves = append(moves, NewMove(from, target, ""))
			}
			if kind != squareEmpty {
				break
			}
			target = target.Offset(dir.dRow, dir.dCol)
		}
	}
	return moves
}

// leaper evaluates a fixed set of offsets; nothing in between can block it.
type leaper struct {
	offsets []direction
}

func (l leaper) moves(board *Board, from Position, color TeamColor, attack bool) []Move {
	moves := []Move{}
	for _, off := range l.offsets {
		target := from.Offset(off.dRow, off.dCol)
		if classify(board, target, color, attack) != squareInvalid {
			moves = append(moves, NewMove(from, target, ""))
		}
	}
	return moves
}

// pawnMover does not use the shared rule: pawns move straight and capture diagonally. A
// diagonal onto the enemy king only counts in attack mode.
type pawnMover struct{}

func (pawnMover) moves(board *Board, from Position, color TeamColor, attack bool) []Move {
	moves := []Move{}
	dir := color.forward()

	isEmpty := func(pos Position) bool {
		if !pos.IsOnBoard() {
			return false
		}
		_, occupied := board.GetPiece(pos)
		return !occupied
	}

	// Check move forward 1
	one := from.Offset(dir, 0)
	if isEmpty(one) {
		moves = appendPawnMove(moves, from, one, color)
		// Check move forward 2 from the home rank
		two := from.Offset(2*dir, 0)
		if from.Row == color.pawnHomeRow() && isEmpty(two) {
			moves = appendPawnMove(moves, from, two, color)
		}
	}
	// Check captures left and right
	for _, dCol := range []int{-1, 1} {
		target := from.Offset(dir, dCol)
		if !target.IsOnBoard() {
			continue
		}
		occupant, ok := board.GetPiece(target)
		if ok && occupant.Color != color && (occupant.Type != King || attack) {
			moves = appendPawnMove(moves, from, target, color)
		}
	}
	return moves
}

// appendPawnMove emits one move, or one per promotion piece when to is on the far rank.
func appendPawnMove(moves []Move, from, to Position, color TeamColor) []Move {
	if to.Row != color.promotionRow() {
		return append(moves, NewMove(from, to, ""))
	}
	for _, promo := range PromotionPieces {
		moves = append(moves, NewMove(from, to, promo))
	}
	return moves
}
