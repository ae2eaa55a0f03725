package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

func newTestApp() *fiber.App {
	gm := service.NewGameManager(time.Second, nil, zerolog.Nop())
	gs := service.NewGameService(gm)
	app := fiber.New()
	RegisterRoutes(app, NewGameController(gs, zerolog.Nop()), NewWebSocketController(gs, zerolog.Nop()), websocket.Config{})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, player, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func createGame(t *testing.T, app *fiber.App, path, body string) string {
	t.Helper()
	status, raw := do(t, app, "POST", path, "alice", body)
	if status != fiber.StatusOK {
		t.Fatalf("%s: status %d: %s", path, status, raw)
	}
	var resp struct {
		GameID string `json:"game_id"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.GameID == "" {
		t.Fatalf("bad create response %s: %v", raw, err)
	}
	return resp.GameID
}

func TestHomeAndHealth(t *testing.T) {
	app := newTestApp()

	status, body := do(t, app, "GET", "/", "", "")
	if status != fiber.StatusOK || string(body) != "Chess Server Running" {
		t.Errorf("GET / = %d %q", status, body)
	}
	status, body = do(t, app, "GET", "/healthz", "", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("GET /healthz = %d %s", status, body)
	}
}

func TestPlayerIDRequired(t *testing.T) {
	app := newTestApp()
	if status, _ := do(t, app, "POST", "/api/game/create", "", ""); status != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
	if status, _ := do(t, app, "POST", "/api/game/create?playerId=alice", "", ""); status != fiber.StatusOK {
		t.Errorf("query player id rejected: %d", status)
	}
}

func TestGameFlow(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app, "/api/game/create", "")

	joins := []struct {
		player string
		status int
		color  string
	}{
		{"alice", fiber.StatusOK, "white"},
		{"bob", fiber.StatusOK, "black"},
		{"carol", fiber.StatusConflict, ""},
	}
	for _, j := range joins {
		status, body := do(t, app, "POST", "/api/game/join/"+gameID, j.player, "")
		if status != j.status {
			t.Fatalf("join %s: status %d: %s", j.player, status, body)
		}
		if j.color != "" && !strings.Contains(string(body), `"color":"`+j.color+`"`) {
			t.Errorf("join %s: %s", j.player, body)
		}
	}

	status, body := do(t, app, "GET", "/api/game/"+gameID+"/moves?square=e2", "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("moves: %d %s", status, body)
	}
	var vm ws.ValidMovesPayload
	if err := json.Unmarshal(body, &vm); err != nil {
		t.Fatalf("decode moves: %v", err)
	}
	sort.Strings(vm.Moves)
	if vm.Square != "e2" || strings.Join(vm.Moves, ",") != "e2e3,e2e4" {
		t.Errorf("moves = %+v", vm)
	}

	moves := []struct {
		player string
		body   string
		status int
	}{
		{"bob", `{"from":"e7","to":"e5"}`, fiber.StatusForbidden},
		{"carol", `{"from":"e2","to":"e4"}`, fiber.StatusForbidden},
		{"alice", `{"from":"e2","to":"e5"}`, fiber.StatusBadRequest},
		{"alice", `{"from":"z9","to":"e4"}`, fiber.StatusBadRequest},
		{"alice", `{"from":"e2","to":"e4"}`, fiber.StatusOK},
		{"bob", `{"from":"e7","to":"e5"}`, fiber.StatusOK},
	}
	for _, m := range moves {
		status, body := do(t, app, "POST", "/api/game/"+gameID+"/move", m.player, m.body)
		if status != m.status {
			t.Fatalf("%s %s: status %d, want %d: %s", m.player, m.body, status, m.status, body)
		}
	}

	status, body = do(t, app, "GET", "/api/game/"+gameID, "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("state: %d %s", status, body)
	}
	var state service.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.ToMove != model.White || len(state.Moves) != 2 || state.Moves[1].Notation != "e5" {
		t.Errorf("state = %+v", state)
	}

	status, body = do(t, app, "GET", "/api/game/"+gameID+"/pgn", "alice", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), "e4 e5") {
		t.Errorf("pgn: %d %s", status, body)
	}

	status, body = do(t, app, "GET", "/api/games", "alice", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), gameID) {
		t.Errorf("games: %d %s", status, body)
	}

	if status, _ := do(t, app, "DELETE", "/api/game/"+gameID, "carol", ""); status != fiber.StatusForbidden {
		t.Errorf("outsider delete status = %d, want 403", status)
	}
	if status, _ := do(t, app, "DELETE", "/api/game/"+gameID, "alice", ""); status != fiber.StatusNoContent {
		t.Errorf("delete status = %d, want 204", status)
	}
	if status, _ := do(t, app, "GET", "/api/game/"+gameID, "alice", ""); status != fiber.StatusNotFound {
		t.Errorf("deleted game status = %d, want 404", status)
	}
}

func TestSeatsKeepPlayerIDs(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app, "/api/game/create", "")

	if status, body := do(t, app, "POST", "/api/game/join/"+gameID, "alice", ""); status != fiber.StatusOK {
		t.Fatalf("join: %d %s", status, body)
	}
	// another player's request must not rewrite the stored seat
	if status, body := do(t, app, "GET", "/api/game/"+gameID, "zzzzz", ""); status != fiber.StatusOK {
		t.Fatalf("state: %d %s", status, body)
	}
	status, body := do(t, app, "GET", "/api/game/"+gameID, "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("state: %d %s", status, body)
	}
	var state service.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Players.White != "alice" || state.Players.Black != "" {
		t.Errorf("players = %+v", state.Players)
	}
}

func TestNotFoundAndBadInput(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app, "/api/game/create", "")

	cases := []struct {
		method, path, body string
		status             int
	}{
		{"GET", "/api/game/nope", "", fiber.StatusNotFound},
		{"POST", "/api/game/join/nope", "", fiber.StatusNotFound},
		{"GET", "/api/game/nope/pgn", "", fiber.StatusNotFound},
		{"GET", "/api/game/" + gameID + "/moves?square=e3", "", fiber.StatusNotFound},
		{"GET", "/api/game/" + gameID + "/moves?square=zz", "", fiber.StatusBadRequest},
		{"POST", "/api/game/load", `{"fen":"not a fen"}`, fiber.StatusBadRequest},
		{"POST", "/api/game/load", `{}`, fiber.StatusBadRequest},
		{"POST", "/api/game/" + gameID + "/move", `{"from":"e7","to":"e8","promotion":"king"}`, fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		status, body := do(t, app, tc.method, tc.path, "alice", tc.body)
		if status != tc.status {
			t.Errorf("%s %s: status %d, want %d: %s", tc.method, tc.path, status, tc.status, body)
		}
	}
}

func TestLoadGameAndPromoteByName(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app, "/api/game/load", `{"fen":"8/P6k/8/8/8/8/8/4K3 w - - 0 1"}`)

	if status, body := do(t, app, "POST", "/api/game/join/"+gameID, "alice", ""); status != fiber.StatusOK {
		t.Fatalf("join: %d %s", status, body)
	}
	status, body := do(t, app, "POST", "/api/game/"+gameID+"/move", "alice", `{"from":"a7","to":"a8","promotion":"knight"}`)
	if status != fiber.StatusOK {
		t.Fatalf("move: %d %s", status, body)
	}
	var state service.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if p, ok := state.Board.GetPiece(model.NewPosition(8, 1)); !ok || p != model.NewPiece(model.White, model.Knight) {
		t.Errorf("a8 = %v, %v", p, ok)
	}
	if state.Moves[0].Notation != "a8=N" {
		t.Errorf("SAN = %q", state.Moves[0].Notation)
	}
}

func TestJoinMatchmaking(t *testing.T) {
	app := newTestApp()
	if status, body := do(t, app, "POST", "/api/game/matchmaking/join", "alice", ""); status != fiber.StatusOK || !strings.Contains(string(body), "queued") {
		t.Fatalf("join: %d %s", status, body)
	}
	if status, _ := do(t, app, "POST", "/api/game/matchmaking/join", "alice", ""); status != fiber.StatusConflict {
		t.Fatalf("second join status = %d, want 409", status)
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	app := newTestApp()
	if status, _ := do(t, app, "GET", "/ws/game/abc", "alice", ""); status != fiber.StatusUpgradeRequired {
		t.Errorf("status = %d, want 426", status)
	}
}

func TestParseMove(t *testing.T) {
	cases := []struct {
		in   ws.MovePayload
		want string
		err  bool
	}{
		{ws.MovePayload{From: "e2", To: "e4"}, "e2e4", false},
		{ws.MovePayload{From: "E7", To: "E8", Promotion: "Q"}, "e7e8q", false},
		{ws.MovePayload{From: "e7", To: "e8", Promotion: "rook"}, "e7e8r", false},
		{ws.MovePayload{From: "e7", To: "e8", Promotion: "pawn"}, "", true},
		{ws.MovePayload{From: "e7", To: "e8", Promotion: "k"}, "", true},
		{ws.MovePayload{From: "e9", To: "e8"}, "", true},
	}
	for _, tc := range cases {
		m, err := parseMove(tc.in)
		if tc.err {
			if !errors.Is(err, model.ErrInvalidMoveNotation) {
				t.Errorf("parseMove(%+v) err = %v, want ErrInvalidMoveNotation", tc.in, err)
			}
			continue
		}
		if err != nil || m.String() != tc.want {
			t.Errorf("parseMove(%+v) = %s, %v; want %s", tc.in, m, err, tc.want)
		}
	}
}
