package service

import (
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// peer serialises writes to one connection; broadcasts and replies come from different
// goroutines.
type peer struct {
	mu   sync.Mutex
	conn Conn
}

func (p *peer) send(msg ws.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(msg)
}

// session is one hosted game. mu guards everything except conns, which has its own lock so
// a slow socket never blocks move handling.
type session struct {
	id        string
	mu        sync.Mutex
	game      *model.Game
	startFEN  string
	plies     []model.Ply
	white     string
	black     string
	createdAt time.Time

	connMu sync.RWMutex
	conns  map[string]*peer
}

func newSession(id string, game *model.Game, startFEN string) *session {
	return &session{
		id:        id,
		game:      game,
		startFEN:  startFEN,
		createdAt: time.Now(),
		conns:     make(map[string]*peer),
	}
}

func (s *session) colorOf(playerID string) (model.TeamColor, bool) {
	switch playerID {
	case "":
		return "", false
	case s.white:
		return model.White, true
	case s.black:
		return model.Black, true
	}
	return "", false
}

// fullmove is the FEN move number of the current position.
func (s *session) fullmove() int {
	_, startTurn, err := notation.ParseFEN(s.startFEN)
	offset := 0
	if err == nil && startTurn == model.Black {
		offset = 1
	}
	return 1 + (len(s.plies)+offset)/2
}

func (s *session) fen() string {
	return notation.EncodeFENWithMoveNumber(s.game.GetBoard(), s.game.GetTeamTurn(), s.fullmove())
}

func (s *session) moves() []model.Move {
	moves := make([]model.Move, len(s.plies))
	for i, p := range s.plies {
		moves[i] = p.Move
	}
	return moves
}

func (s *session) state() GameState {
	turn := s.game.GetTeamTurn()
	status := s.game.Status()
	st := GameState{
		ID:      s.id,
		Board:   s.game.GetBoard(),
		FEN:     s.fen(),
		ToMove:  turn,
		Status:  status,
		IsCheck: status == model.StatusCheck || status == model.StatusCheckmate,
		Moves:   make([]model.Ply, len(s.plies)),
		Players: Players{White: s.white, Black: s.black},
	}
	copy(st.Moves, s.plies)
	if n := len(s.plies); n > 0 {
		last := s.plies[n-1].Move
		st.LastMove = &model.SimpleMove{From: last.Start, To: last.End}
	}
	return st
}

func (s *session) record() storage.GameRecord {
	moves := make([]string, len(s.plies))
	for i, p := range s.plies {
		moves[i] = p.Move.String()
	}
	return storage.GameRecord{
		ID:        s.id,
		StartFEN:  s.startFEN,
		FEN:       s.fen(),
		Turn:      string(s.game.GetTeamTurn()),
		Moves:     moves,
		White:     s.white,
		Black:     s.black,
		Status:    string(s.game.Status()),
		CreatedAt: s.createdAt,
	}
}

func (s *session) peers() map[string]*peer {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	out := make(map[string]*peer, len(s.conns))
	for id, p := range s.conns {
		out[id] = p
	}
	return out
}

// GameState is what clients see of a game.
type GameState struct {
	ID       string            `json:"id"`
	Board    model.Board       `json:"board"`
	FEN      string            `json:"fen"`
	ToMove   model.TeamColor   `json:"toMove"`
	Status   model.Status      `json:"status"`
	IsCheck  bool              `json:"isCheck"`
	Moves    []model.Ply       `json:"moveHistory"`
	LastMove *model.SimpleMove `json:"lastMove"`
	Players  Players           `json:"players"`
}

type Players struct {
	White string `json:"white"`
	Black string `json:"black"`
}
