package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameExists       = errors.New("game already exists")
	ErrGameFull         = errors.New("game is full")
	ErrPlayerNotInGame  = errors.New("player is not in this game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrEmptySquare      = errors.New("no piece on square")
	ErrAlreadyConnected = errors.New("player already connected")
	ErrNotConnected     = errors.New("player not connected")
)

// Store persists game records. A nil Store disables persistence.
type Store interface {
	SaveGame(rec storage.GameRecord) error
	ListGames() ([]storage.GameRecord, error)
	DeleteGame(id string) error
}

type GameManager struct {
	games            map[string]*session
	queue            *model.Queue
	matchingChannels map[string]chan ws.MatchFound
	pendingMatches   map[string]ws.MatchFound
	interval         time.Duration
	store            Store
	log              zerolog.Logger
	mu               sync.RWMutex
}

func NewGameManager(interval time.Duration, store Store, log zerolog.Logger) *GameManager {
	if interval <= 0 {
		interval = time.Second
	}
	return &GameManager{
		games:            make(map[string]*session),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan ws.MatchFound),
		pendingMatches:   make(map[string]ws.MatchFound),
		interval:         interval,
		store:            store,
		log:              log.With().Str("component", "game_manager").Logger(),
	}
}

func (gm *GameManager) session(gameID string) (*session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return s, nil
}

func (gm *GameManager) CreateGame(gameID string) error {
	return gm.CreateGameFromFEN(gameID, notation.StartFEN)
}

// CreateGameFromFEN hosts a new game starting from the position in fen.
func (gm *GameManager) CreateGameFromFEN(gameID, fen string) error {
	board, turn, err := notation.ParseFEN(fen)
	if err != nil {
		return err
	}
	game := model.NewGame()
	game.SetBoard(board)
	game.SetTeamTurn(turn)
	// Stored in canonical form so replays and PGN tags match what EncodeFEN writes.
	s := newSession(gameID, game, notation.EncodeFEN(board, turn))

	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	gm.games[gameID] = s
	gm.mu.Unlock()

	gm.log.Info().Str("game", gameID).Str("fen", s.startFEN).Msg("game created")
	s.mu.Lock()
	gm.persist(s.record())
	s.mu.Unlock()
	return nil
}

// GetGame returns an independent copy of the game's engine state.
func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Copy(), nil
}

// GameIDs lists the hosted games in sorted order.
func (gm *GameManager) GameIDs() []string {
	gm.mu.RLock()
	ids := maps.Keys(gm.games)
	gm.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// AddPlayerToGame seats playerID as white, or black if white is taken. A player already
// seated gets their existing color back.
func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.TeamColor, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	color, seated := s.colorOf(playerID)
	switch {
	case seated:
	case s.white == "":
		s.white, color = playerID, model.White
	case s.black == "":
		s.black, color = playerID, model.Black
	default:
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrGameFull, gameID)
	}
	if seated {
		s.mu.Unlock()
		return color, nil
	}
	gm.persist(s.record())
	state := s.state()
	s.mu.Unlock()

	gm.log.Info().Str("game", gameID).Str("player", playerID).Str("color", string(color)).Msg("player joined")
	gm.broadcast(s, state)
	return color, nil
}

func (gm *GameManager) GetGameState(gameID string) (GameState, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(), nil
}

// ValidMoves lists the legal moves of the piece on square.
func (gm *GameManager) ValidMoves(gameID string, square model.Position) ([]model.Move, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	moves, ok := s.game.ValidMoves(square)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEmptySquare, square)
	}
	return moves, nil
}

// MakeMove plays move for playerID, who must hold the side to move.
func (gm *GameManager) MakeMove(gameID string, playerID string, move model.Move) (GameState, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return GameState{}, err
	}

	s.mu.Lock()
	color, seated := s.colorOf(playerID)
	if !seated {
		s.mu.Unlock()
		return GameState{}, ErrPlayerNotInGame
	}
	if color != s.game.GetTeamTurn() {
		s.mu.Unlock()
		return GameState{}, ErrNotYourTurn
	}

	before := s.game.GetBoard()
	fenBefore := s.fen()
	if err := s.game.MakeMove(move); err != nil {
		s.mu.Unlock()
		return GameState{}, err
	}

	ply := model.Ply{Move: move, Notation: move.String()}
	ply.Piece, _ = before.GetPiece(move.Start)
	if captured, ok := before.GetPiece(move.End); ok {
		ply.CapturedPiece = &captured
	}
	if san, err := notation.SAN(fenBefore, []model.Move{move}); err == nil {
		ply.Notation = san[0]
	} else {
		gm.log.Warn().Err(err).Str("game", gameID).Str("move", move.String()).Msg("no SAN for move")
	}
	s.plies = append(s.plies, ply)
	gm.persist(s.record())
	state := s.state()
	s.mu.Unlock()

	gm.log.Info().
		Str("game", gameID).
		Str("player", playerID).
		Str("move", ply.Notation).
		Str("status", string(state.Status)).
		Msg("move played")
	gm.broadcast(s, state)
	return state, nil
}

// DeleteGame ends the game for everyone: its connections are closed and its record is
// removed. Only a seated player may delete a game.
func (gm *GameManager) DeleteGame(gameID string, playerID string) error {
	s, err := gm.session(gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	_, seated := s.colorOf(playerID)
	s.mu.Unlock()
	if !seated {
		return ErrPlayerNotInGame
	}

	gm.mu.Lock()
	delete(gm.games, gameID)
	gm.mu.Unlock()

	for _, p := range s.peers() {
		p.conn.Close()
	}
	if gm.store != nil {
		if err := gm.store.DeleteGame(gameID); err != nil {
			gm.log.Error().Err(err).Str("game", gameID).Msg("failed to delete stored game")
		}
	}
	gm.log.Info().Str("game", gameID).Str("player", playerID).Msg("game deleted")
	return nil
}

// PGN renders the game's move record with player tags.
func (gm *GameManager) PGN(gameID string) (string, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	startFEN, moves := s.startFEN, s.moves()
	tags := map[string]string{
		"Event": "Casual game",
		"Site":  "chess-backend",
		"Date":  s.createdAt.Format("2006.01.02"),
	}
	if s.white != "" {
		tags["White"] = s.white
	}
	if s.black != "" {
		tags["Black"] = s.black
	}
	s.mu.Unlock()

	return notation.PGN(startFEN, moves, tags)
}

// persist saves rec. Callers hold the session lock so writes land in move order.
func (gm *GameManager) persist(rec storage.GameRecord) {
	if gm.store == nil {
		return
	}
	if err := gm.store.SaveGame(rec); err != nil {
		gm.log.Error().Err(err).Str("game", rec.ID).Msg("failed to persist game")
	}
}

// Restore rehydrates every stored game. Moves are replayed from the start position; a
// record whose moves no longer replay is restored from its current FEN without history.
func (gm *GameManager) Restore() (int, error) {
	if gm.store == nil {
		return 0, nil
	}
	recs, err := gm.store.ListGames()
	if err != nil {
		return 0, fmt.Errorf("list stored games: %w", err)
	}

	restored := 0
	for _, rec := range recs {
		s, err := restoreSession(rec)
		if err != nil {
			gm.log.Warn().Err(err).Str("game", rec.ID).Msg("skipping stored game")
			continue
		}
		if len(s.plies) != len(rec.Moves) {
			gm.log.Warn().Str("game", rec.ID).Msg("move log does not replay, restored from fen")
		}

		gm.mu.Lock()
		if _, exists := gm.games[rec.ID]; !exists {
			gm.games[rec.ID] = s
			restored++
		}
		gm.mu.Unlock()
	}
	gm.log.Info().Int("games", restored).Msg("restored games")
	return restored, nil
}

func restoreSession(rec storage.GameRecord) (*session, error) {
	startFEN := rec.StartFEN
	if startFEN == "" {
		startFEN = notation.StartFEN
	}
	board, turn, err := notation.ParseFEN(startFEN)
	if err != nil {
		return nil, err
	}
	game := model.NewGame()
	game.SetBoard(board)
	game.SetTeamTurn(turn)

	s := newSession(rec.ID, game, startFEN)
	s.white, s.black = rec.White, rec.Black
	if !rec.CreatedAt.IsZero() {
		s.createdAt = rec.CreatedAt
	}

	if plies, ok := replayPlies(game, startFEN, rec.Moves); ok {
		s.plies = plies
		return s, nil
	}

	board, turn, err = notation.ParseFEN(rec.FEN)
	if err != nil {
		return nil, fmt.Errorf("restore %s from fen: %w", rec.ID, err)
	}
	game = model.NewGame()
	game.SetBoard(board)
	game.SetTeamTurn(turn)
	s.game = game
	s.startFEN = notation.EncodeFEN(board, turn)
	s.plies = nil
	return s, nil
}

// replayPlies plays moves onto game and rebuilds their ply records. game is left in an
// undefined state when ok is false.
func replayPlies(game *model.Game, startFEN string, moves []string) (plies []model.Ply, ok bool) {
	parsed := make([]model.Move, 0, len(moves))
	for _, m := range moves {
		move, err := model.ParseMove(m)
		if err != nil {
			return nil, false
		}
		parsed = append(parsed, move)
	}
	san, err := notation.SAN(startFEN, parsed)
	if err != nil {
		return nil, false
	}

	for i, move := range parsed {
		before := game.GetBoard()
		if err := game.MakeMove(move); err != nil {
			return nil, false
		}
		ply := model.Ply{Move: move, Notation: san[i]}
		ply.Piece, _ = before.GetPiece(move.Start)
		if captured, ok := before.GetPiece(move.End); ok {
			ply.CapturedPiece = &captured
		}
		plies = append(plies, ply)
	}
	return plies, true
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn Conn) error {
	s, err := gm.session(gameID)
	if err != nil {
		return err
	}

	s.connMu.Lock()
	if _, exists := s.conns[playerID]; exists {
		s.connMu.Unlock()
		return ErrAlreadyConnected
	}
	p := &peer{conn: conn}
	s.conns[playerID] = p
	s.connMu.Unlock()
	gm.log.Debug().Str("game", gameID).Str("player", playerID).Msg("connection registered")

	s.mu.Lock()
	state := s.state()
	s.mu.Unlock()
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		return err
	}
	return p.send(msg)
}

// UnregisterConnection drops playerID's connection if it is still conn.
func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn Conn) {
	s, err := gm.session(gameID)
	if err != nil {
		return
	}
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if p, exists := s.conns[playerID]; exists && p.conn == conn {
		delete(s.conns, playerID)
		gm.log.Debug().Str("game", gameID).Str("player", playerID).Msg("connection unregistered")
	}
}

// Send writes msg to playerID's connection in the game.
func (gm *GameManager) Send(gameID string, playerID string, msg ws.Message) error {
	s, err := gm.session(gameID)
	if err != nil {
		return err
	}
	s.connMu.RLock()
	p, exists := s.conns[playerID]
	s.connMu.RUnlock()
	if !exists {
		return ErrNotConnected
	}
	return p.send(msg)
}

// broadcast pushes state to every connection of the game. Connections that fail are
// dropped.
func (gm *GameManager) broadcast(s *session, state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		gm.log.Error().Err(err).Str("game", s.id).Msg("failed to marshal state")
		return
	}
	for playerID, p := range s.peers() {
		if err := p.send(msg); err != nil {
			gm.log.Warn().Err(err).Str("game", s.id).Str("player", playerID).Msg("failed to send state")
			s.connMu.Lock()
			if s.conns[playerID] == p {
				delete(s.conns, playerID)
			}
			s.connMu.Unlock()
		}
	}
}
