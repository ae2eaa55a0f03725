package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/middleware"
)

// RegisterRoutes mounts the REST and WebSocket endpoints on app.
func RegisterRoutes(app *fiber.App, gc *GameController, wsc *WebSocketController, wsConfig websocket.Config) {
	app.Get("/", gc.Home)
	app.Get("/healthz", gc.Health)

	// Set up WebSocket routes
	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID(), middleware.WebSocketUpgrade())
	wsRoutes.Get("/matchmaking", websocket.New(wsc.HandleMatchmaking, wsConfig))
	wsRoutes.Get("/game/:gameId", websocket.New(wsc.HandleConnection, wsConfig))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())
	api.Get("/games", gc.ListGames)

	// Game routes
	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gc.JoinMatchmaking)
	gameRoutes.Post("/create", gc.CreateGame)
	gameRoutes.Post("/load", gc.LoadGame)
	gameRoutes.Post("/join/:gameId", gc.JoinGame)
	gameRoutes.Get("/:gameId", gc.GetGameState)
	gameRoutes.Get("/:gameId/moves", gc.ValidMoves)
	gameRoutes.Get("/:gameId/pgn", gc.PGN)
	gameRoutes.Post("/:gameId/move", gc.MakeMove)
	gameRoutes.Delete("/:gameId", gc.DeleteGame)
}
