package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeValidMoves MessageType = "validMoves"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a Message of type t.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// MovePayload is a move in coordinate form: {"from":"e7","to":"e8","promotion":"queen"}.
type MovePayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type ValidMovesRequest struct {
	Square string `json:"square"`
}

type ValidMovesPayload struct {
	Square string   `json:"square"`
	Moves  []string `json:"moves"`
}

type MatchFound struct {
	GameID string `json:"gameId"`
	Color  string `json:"color"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
