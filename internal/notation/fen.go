// Package notation converts engine positions and moves to and from the standard chess
// text formats: FEN for positions, SAN and PGN for move records.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var ErrInvalidFEN = errors.New("invalid fen")

// StartFEN is the standard starting position as EncodeFEN writes it. Castling rights are
// always "-": the engine does not castle.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

// ParseFEN decodes the placement and side-to-move fields of fen. Castling and en passant
// fields are accepted but ignored; missing trailing fields default to "- - 0 1".
func ParseFEN(fen string) (model.Board, model.TeamColor, error) {
	normalized, err := normalizeFEN(fen)
	if err != nil {
		return model.Board{}, "", err
	}
	db, err := parseDragontooth(normalized)
	if err != nil {
		return model.Board{}, "", err
	}

	board := model.NewBoard()
	sides := []struct {
		color model.TeamColor
		bb    *dragontoothmg.Bitboards
	}{
		{model.White, &db.White},
		{model.Black, &db.Black},
	}
	for sq := 0; sq < 64; sq++ {
		bit := uint64(1) << uint(sq)
		pos := model.NewPosition(sq/8+1, sq%8+1)
		for _, side := range sides {
			if pieceType, ok := pieceAt(side.bb, bit); ok {
				board.AddPiece(pos, model.NewPiece(side.color, pieceType))
			}
		}
	}

	turn := model.Black
	if db.Wtomove {
		turn = model.White
	}
	return board, turn, nil
}

func pieceAt(bb *dragontoothmg.Bitboards, bit uint64) (model.PieceType, bool) {
	switch {
	case bb.Pawns&bit != 0:
		return model.Pawn, true
	case bb.Knights&bit != 0:
		return model.Knight, true
	case bb.Bishops&bit != 0:
		return model.Bishop, true
	case bb.Rooks&bit != 0:
		return model.Rook, true
	case bb.Queens&bit != 0:
		return model.Queen, true
	case bb.Kings&bit != 0:
		return model.King, true
	}
	return "", false
}

// parseDragontooth guards dragontoothmg.ParseFen, which panics on input it cannot index.
func parseDragontooth(fen string) (b dragontoothmg.Board, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidFEN, r)
		}
	}()
	return dragontoothmg.ParseFen(fen), nil
}

// normalizeFEN validates the placement and side fields and rewrites the rest as
// "- - halfmove fullmove".
func normalizeFEN(fen string) (string, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 || len(fields) > 6 {
		return "", fmt.Errorf("%w: expected 2 to 6 fields, got %d", ErrInvalidFEN, len(fields))
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return "", fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, rank := range ranks {
		squares := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				squares += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				squares++
			default:
				return "", fmt.Errorf("%w: bad character %q in rank %d", ErrInvalidFEN, c, 8-i)
			}
		}
		if squares != 8 {
			return "", fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, 8-i, squares)
		}
	}
	if fields[1] != "w" && fields[1] != "b" {
		return "", fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	halfmove, fullmove := "0", "1"
	if len(fields) > 4 {
		if _, err := strconv.Atoi(fields[4]); err != nil {
			return "", fmt.Errorf("%w: halfmove clock %q", ErrInvalidFEN, fields[4])
		}
		halfmove = fields[4]
	}
	if len(fields) > 5 {
		if n, err := strconv.Atoi(fields[5]); err != nil || n < 1 {
			return "", fmt.Errorf("%w: fullmove number %q", ErrInvalidFEN, fields[5])
		}
		fullmove = fields[5]
	}
	return strings.Join([]string{fields[0], fields[1], "-", "-", halfmove, fullmove}, " "), nil
}

// EncodeFEN writes board and turn as a six-field FEN with no castling or en passant rights.
func EncodeFEN(board model.Board, turn model.TeamColor) string {
	return EncodeFENWithMoveNumber(board, turn, 1)
}

func EncodeFENWithMoveNumber(board model.Board, turn model.TeamColor, fullmove int) string {
	var sb strings.Builder
	for row := 8; row >= 1; row-- {
		empty := 0
		for col := 1; col <= 8; col++ {
			p, ok := board.GetPiece(model.NewPosition(row, col))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.Letter())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row > 1 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if turn == model.Black {
		side = "b"
	}
	if fullmove < 1 {
		fullmove = 1
	}
	fmt.Fprintf(&sb, " %s - - 0 %d", side, fullmove)
	return sb.String()
}

// LegalMovesOracle lists the legal moves of the side to move in fen as computed by
// dragontoothmg, in coordinate notation. Castling and en passant rights are dropped first
// so the result is comparable with the engine's.
func LegalMovesOracle(fen string) (moves []string, err error) {
	normalized, err := normalizeFEN(fen)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			moves, err = nil, fmt.Errorf("%w: %v", ErrInvalidFEN, r)
		}
	}()
	b := dragontoothmg.ParseFen(normalized)
	for _, m := range b.GenerateLegalMoves() {
		moves = append(moves, strings.ToLower(m.String()))
	}
	return moves, nil
}
