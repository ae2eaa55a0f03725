package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.TeamColor, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

// LoadGame hosts a new game starting from fen.
func (gs *GameService) LoadGame(fen string) (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGameFromFEN(gameID, fen); err != nil {
		return "", fmt.Errorf("failed to load game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) ListGames() []string {
	return gs.gameManager.GameIDs()
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) ValidMoves(gameID string, square model.Position) ([]model.Move, error) {
	return gs.gameManager.ValidMoves(gameID, square)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.Move) (GameState, error) {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) DeleteGame(gameID string, playerID string) error {
	return gs.gameManager.DeleteGame(gameID, playerID)
}

func (gs *GameService) PGN(gameID string) (string, error) {
	return gs.gameManager.PGN(gameID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) Send(gameID string, playerID string, msg ws.Message) error {
	return gs.gameManager.Send(gameID, playerID, msg)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan ws.MatchFound) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan ws.MatchFound) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
