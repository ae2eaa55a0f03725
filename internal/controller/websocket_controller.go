package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log.With().Str("component", "websocket").Logger(),
	}
}

func playerIDOf(c *websocket.Conn) string {
	id, _ := c.Locals(middleware.PlayerIDKey).(string)
	return id
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := playerIDOf(c)
	log := wsc.log.With().Str("game", gameID).Str("player", playerID).Logger()

	// Register this connection with the game; this also sends the current state.
	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warn().Err(err).Msg("failed to register connection")
		if msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()}); merr == nil {
			c.WriteJSON(msg)
		}
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)
	log.Debug().Msg("websocket connected")

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.reply(gameID, playerID, ws.MessageTypeError, ws.ErrorPayload{Error: "malformed message"})
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("message rejected")
			wsc.reply(gameID, playerID, ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
		}
	}
}

// handleMessage dispatches one client message. A successful move needs no reply: the new
// state reaches every connection by broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var payload ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		move, err := parseMove(payload)
		if err != nil {
			return err
		}
		_, err = wsc.gameService.HandleMove(gameID, playerID, move)
		return err

	case ws.MessageTypeValidMoves:
		var req ws.ValidMovesRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		square, err := model.ParsePosition(req.Square)
		if err != nil {
			return err
		}
		moves, err := wsc.gameService.ValidMoves(gameID, square)
		if err != nil && !errors.Is(err, service.ErrEmptySquare) {
			return err
		}
		wsc.reply(gameID, playerID, ws.MessageTypeValidMoves, validMovesPayload(square, moves))
		return nil

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) reply(gameID, playerID string, t ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		wsc.log.Error().Err(err).Msg("failed to marshal reply")
		return
	}
	if err := wsc.gameService.Send(gameID, playerID, msg); err != nil {
		wsc.log.Debug().Err(err).Str("game", gameID).Str("player", playerID).Msg("reply not delivered")
	}
}

// HandleMatchmaking queues the player and holds the connection open until a match is made
// or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := playerIDOf(c)
	log := wsc.log.With().Str("player", playerID).Logger()

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		log.Warn().Err(err).Msg("failed to join matchmaking")
		c.Close()
		return
	}

	ch := make(chan ws.MatchFound, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)

	// The read loop only notices the client closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			log.Debug().Msg("matchmaking channel replaced")
			break
		}
		msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
		if err == nil {
			err = c.WriteJSON(msg)
		}
		if err != nil {
			log.Warn().Err(err).Msg("failed to send match")
		}
	case <-gone:
		wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)
		return
	}
	c.Close()
	<-gone
}
