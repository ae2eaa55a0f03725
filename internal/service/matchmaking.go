package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(playerID); err != nil {
		return err
	}
	gm.log.Info().Str("player", playerID).Int("queued", gm.queue.Size()).Msg("player queued")
	return nil
}

// RegisterMatchmakingChannel subscribes ch to playerID's match. A match found before the
// channel was registered is delivered immediately. ch must have room for one event; the
// manager closes it after delivering or when a newer channel replaces it.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan ws.MatchFound) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		ch <- event
		close(ch)
		return
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel drops ch and takes playerID out of the queue. It does not
// close ch; the owner does.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan ws.MatchFound) {
	gm.mu.Lock()
	if gm.matchingChannels[playerID] != ch {
		gm.mu.Unlock()
		return
	}
	delete(gm.matchingChannels, playerID)
	gm.mu.Unlock()

	if gm.queue.RemovePlayer(playerID) {
		gm.log.Info().Str("player", playerID).Msg("player left queue")
	}
}

// Run pairs queued players every interval until ctx is done.
func (gm *GameManager) Run(ctx context.Context) {
	ticker := time.NewTicker(gm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.processMatchmaking()
		}
	}
}

// processMatchmaking pairs the queue front to back. The first player of each pair plays
// white.
func (gm *GameManager) processMatchmaking() int {
	matched := 0
	for {
		first, second, ok := gm.queue.GetNextPair()
		if !ok {
			return matched
		}

		gameID := uuid.New().String()
		if err := gm.CreateGame(gameID); err != nil {
			gm.log.Error().Err(err).Msg("failed to create matched game")
			continue
		}
		for _, p := range []model.QueuedPlayer{first, second} {
			color, err := gm.AddPlayerToGame(gameID, p.PlayerID)
			if err != nil {
				gm.log.Error().Err(err).Str("game", gameID).Str("player", p.PlayerID).Msg("failed to seat matched player")
				continue
			}
			gm.notifyMatch(p.PlayerID, ws.MatchFound{GameID: gameID, Color: string(color)})
		}
		gm.log.Info().
			Str("game", gameID).
			Str("white", first.PlayerID).
			Str("black", second.PlayerID).
			Dur("waited", time.Since(first.JoinedAt)).
			Msg("match found")
		matched++
	}
}

func (gm *GameManager) notifyMatch(playerID string, event ws.MatchFound) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.pendingMatches[playerID] = event
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- event:
	default:
		gm.log.Warn().Str("player", playerID).Msg("matchmaking channel full, holding match")
		gm.pendingMatches[playerID] = event
	}
	close(ch)
}
