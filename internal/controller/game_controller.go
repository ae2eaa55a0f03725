package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type GameController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, log zerolog.Logger) *GameController {
	return &GameController{
		gameService: gameService,
		log:         log.With().Str("component", "game_controller").Logger(),
	}
}

// statusFor maps service and engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrEmptySquare):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGameExists), errors.Is(err, service.ErrGameFull),
		errors.Is(err, model.ErrAlreadyQueued):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrPlayerNotInGame), errors.Is(err, service.ErrNotYourTurn):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrInvalidMove), errors.Is(err, model.ErrInvalidMoveNotation),
		errors.Is(err, model.ErrInvalidPosition), errors.Is(err, notation.ErrInvalidFEN):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		gc.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// parseMove converts a client move. Promotion may be a letter ("q") or a piece name
// ("queen").
func parseMove(p ws.MovePayload) (model.Move, error) {
	promotion := strings.ToLower(p.Promotion)
	if len(promotion) <= 1 {
		return model.ParseMove(strings.ToLower(p.From + p.To + promotion))
	}
	m, err := model.ParseMove(strings.ToLower(p.From + p.To))
	if err != nil {
		return model.Move{}, err
	}
	if !slices.Contains(model.PromotionPieces, model.PieceType(promotion)) {
		return model.Move{}, model.ErrInvalidMoveNotation
	}
	m.Promotion = model.PieceType(promotion)
	return m, nil
}

func (gc *GameController) Home(c *fiber.Ctx) error {
	return c.SendString("Chess Server Running")
}

func (gc *GameController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"games":  len(gc.gameService.ListGames()),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) LoadGame(c *fiber.Ctx) error {
	var body struct {
		FEN string `json:"fen"`
	}
	if err := c.BodyParser(&body); err != nil || body.FEN == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body must be {\"fen\": \"...\"}",
		})
	}

	gameID, err := gc.gameService.LoadGame(body.FEN)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game loaded",
		"game_id": gameID,
	})
}

func (gc *GameController) ListGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"games": gc.gameService.ListGames(),
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
		"player":  model.Player{ID: playerID, Color: color},
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) ValidMoves(c *fiber.Ctx) error {
	square, err := model.ParsePosition(c.Query("square"))
	if err != nil {
		return gc.fail(c, err)
	}

	moves, err := gc.gameService.ValidMoves(c.Params("gameId"), square)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(validMovesPayload(square, moves))
}

func validMovesPayload(square model.Position, moves []model.Move) ws.ValidMovesPayload {
	out := ws.ValidMovesPayload{Square: square.String(), Moves: make([]string, 0, len(moves))}
	for _, m := range moves {
		out.Moves = append(out.Moves, m.String())
	}
	return out
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var payload ws.MovePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body must be {\"from\": \"e2\", \"to\": \"e4\"}",
		})
	}
	move, err := parseMove(payload)
	if err != nil {
		return gc.fail(c, err)
	}

	state, err := gc.gameService.HandleMove(c.Params("gameId"), middleware.PlayerID(c), move)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId"), middleware.PlayerID(c)); err != nil {
		return gc.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) PGN(c *fiber.Ctx) error {
	pgn, err := gc.gameService.PGN(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/x-chess-pgn")
	return c.SendString(pgn)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := middleware.PlayerID(c)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}
