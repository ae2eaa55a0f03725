package notation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/notnil/chess"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var ErrReplay = errors.New("move record does not replay")

// replay plays moves from startFEN and returns the resulting game with the SAN of each move.
func replay(startFEN string, moves []model.Move) (*chess.Game, []string, error) {
	opt, err := chess.FEN(startFEN)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	game := chess.NewGame(opt)

	san := make([]string, 0, len(moves))
	for i, m := range moves {
		pos := game.Position()
		decoded, err := chess.UCINotation{}.Decode(pos, m.String())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: ply %d %s: %v", ErrReplay, i+1, m, err)
		}
		cm := tagged(pos, decoded)
		if cm == nil {
			return nil, nil, fmt.Errorf("%w: ply %d %s: illegal in %s", ErrReplay, i+1, m, pos)
		}
		san = append(san, chess.AlgebraicNotation{}.Encode(pos, cm))
		if err := game.Move(cm); err != nil {
			return nil, nil, fmt.Errorf("%w: ply %d %s: %v", ErrReplay, i+1, m, err)
		}
	}
	return game, san, nil
}

// tagged returns the legal move of pos matching decoded. Decoded moves carry no check
// tags, and SAN needs them for the + and # suffixes.
func tagged(pos *chess.Position, decoded *chess.Move) *chess.Move {
	for _, vm := range pos.ValidMoves() {
		if vm.S1() == decoded.S1() && vm.S2() == decoded.S2() && vm.Promo() == decoded.Promo() {
			return vm
		}
	}
	return nil
}

// SAN returns the standard algebraic notation of each move played from startFEN.
func SAN(startFEN string, moves []model.Move) ([]string, error) {
	_, san, err := replay(startFEN, moves)
	return san, err
}

// PGN renders the move record as PGN. Tags are written in key order; a non-standard start
// position adds the SetUp and FEN tags.
func PGN(startFEN string, moves []model.Move, tags map[string]string) (string, error) {
	game, _, err := replay(startFEN, moves)
	if err != nil {
		return "", err
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		game.AddTagPair(k, tags[k])
	}
	if startFEN != StartFEN {
		game.AddTagPair("SetUp", "1")
		game.AddTagPair("FEN", startFEN)
	}
	return game.String(), nil
}
