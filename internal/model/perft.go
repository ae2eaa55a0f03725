package model

// Perft counts the leaf nodes of the legal move tree of the given depth, starting with
// the side to move. It is the standard check of move generation correctness.
func Perft(g *Game, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := g.LegalMoves(g.turn)
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		nodes += Perft(g.child(m), depth-1)
	}
	return nodes
}

// PerftDivide returns the perft count below each root move.
func PerftDivide(g *Game, depth int) map[Move]uint64 {
	div := make(map[Move]uint64)
	if depth <= 0 {
		return div
	}
	for _, m := range g.LegalMoves(g.turn) {
		div[m] = Perft(g.child(m), depth-1)
	}
	return div
}

// child plays a move already known to be legal on a history-free copy of the game.
func (g *Game) child(m Move) *Game {
	piece, _ := g.board.GetPiece(m.Start)
	next := &Game{board: g.board.Copy(), turn: g.turn.Other()}
	apply(&next.board, piece, m)
	return next
}
