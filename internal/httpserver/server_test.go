package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/contexto/internal/config"
	"github.com/robalobadob/contexto/internal/game"
	"github.com/robalobadob/contexto/internal/ranking"
	"github.com/robalobadob/contexto/internal/store"
	"github.com/robalobadob/contexto/internal/words"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           5175,
			ClientOrigin:   "http://localhost:5173",
			HandlerTimeout: 5 * time.Second,
		},
		Log:     config.LogConfig{Level: "info"},
		Storage: config.StorageConfig{Driver: "memory"},
		Game: config.GameConfig{
			RoundPoints:  100,
			HintBudget:   3,
			HintPenalty:  10,
			PenaltyEvery: 10,
			GuessPenalty: 1,
			AdvanceDelay: time.Hour,
		},
		Auth:      config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, CookieName: "contexto_token"},
		Ranking:   config.RankingConfig{TopN: 10},
		RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
	}
}

type testEnv struct {
	srv    *Server
	mirror *ranking.Mirror
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	ds, err := words.New([]words.Category{
		{Name: "Céu", Words: []string{"sol", "lua", "estrela", "nuvem"}},
		{Name: "Mar", Words: []string{"onda", "sal"}},
	})
	require.NoError(t, err)

	mirror := ranking.NewMirror(ranking.NewMemoryStore(), cfg.Ranking.TopN)
	sessions := game.NewSessions(game.Options{
		Dataset: ds,
		Backend: store.NewMemoryBackend(),
		Mirror:  mirror,
		Rules:   cfg.Game.Rules(),
	})
	t.Cleanup(func() {
		sessions.Close()
		_ = mirror.Close(context.Background())
	})
	return &testEnv{
		srv:    New(Deps{Config: cfg, Dataset: ds, Sessions: sessions, Board: mirror}),
		mirror: mirror,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (e *testEnv) session(t *testing.T, name string) string {
	t.Helper()
	code, out := e.do(t, http.MethodPost, "/session", "", map[string]string{"name": name})
	require.Equal(t, http.StatusOK, code)
	tok, _ := out["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestHealthAndCategories(t *testing.T) {
	env := newTestEnv(t, testConfig())

	code, out := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["ok"])

	code, out = env.do(t, http.MethodGet, "/categories", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), out["count"])
	assert.Equal(t, float64(6), out["totalWords"])

	code, out = env.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", out["error"])
}

func TestGameRequiresToken(t *testing.T) {
	env := newTestEnv(t, testConfig())

	code, _ := env.do(t, http.MethodGet, "/game/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(t, http.MethodGet, "/game/state", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSessionKeepsPlayerID(t *testing.T) {
	env := newTestEnv(t, testConfig())
	tok := env.session(t, "Ana")

	_, first := env.do(t, http.MethodPost, "/session", "", map[string]string{"name": "Ana"})
	code, renamed := env.do(t, http.MethodPost, "/session", tok, map[string]string{"name": "  Ana Maria  "})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ana Maria", renamed["name"])
	assert.NotEqual(t, first["playerId"], renamed["playerId"])

	claims, err := env.srv.tokens.parse(tok)
	require.NoError(t, err)
	assert.Equal(t, claims.Subject, renamed["playerId"])
}

func TestGameFlow(t *testing.T) {
	env := newTestEnv(t, testConfig())
	tok := env.session(t, "Ana")

	code, out := env.do(t, http.MethodPost, "/game/begin", tok, nil)
	require.Equal(t, http.StatusOK, code)
	state := out["state"].(map[string]any)
	assert.Equal(t, "round_active", state["phase"])
	assert.Equal(t, "Ana", state["name"])
	assert.Equal(t, float64(100), state["points"])

	code, out = env.do(t, http.MethodPost, "/game/guess", tok, map[string]string{"guess": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "empty_guess", out["error"])
	assert.Equal(t, "Digite um palpite.", out["message"])

	code, out = env.do(t, http.MethodPost, "/game/guess", tok, map[string]string{"guess": "Lua"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "lua", out["guess"])
	assert.Equal(t, float64(1), out["distance"])
	assert.Equal(t, "very close", out["tier"])
	assert.Equal(t, float64(67), out["percentage"])
	assert.Equal(t, false, out["won"])

	code, out = env.do(t, http.MethodPost, "/game/guess", tok, map[string]string{"guess": "vento"})
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, out["distance"])
	assert.Equal(t, "unranked", out["tier"])

	code, out = env.do(t, http.MethodPost, "/game/guess", tok, map[string]string{"guess": "lua"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "already_tried", out["error"])

	code, out = env.do(t, http.MethodPost, "/game/hint", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "length", out["kind"])
	assert.Equal(t, "A resposta tem 3 letras.", out["message"])
	assert.Equal(t, float64(2), out["hintsLeft"])
	assert.Equal(t, float64(90), out["points"])

	code, out = env.do(t, http.MethodPost, "/game/guess", tok, map[string]string{"guess": "sol"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["won"])
	assert.Equal(t, "round_won", out["state"].(map[string]any)["phase"])

	require.Eventually(t, func() bool {
		_, lb := env.do(t, http.MethodGet, "/leaderboard", "", nil)
		entries, _ := lb["entries"].([]any)
		if len(entries) != 1 {
			return false
		}
		e := entries[0].(map[string]any)
		return e["player"] == "Ana" && e["totalPoints"] == float64(90)
	}, time.Second, 10*time.Millisecond)

	code, out = env.do(t, http.MethodGet, "/game/overview", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), out["global"].(map[string]any)["done"])

	code, out = env.do(t, http.MethodGet, "/game/history/0/0", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["entries"], 3)

	code, out = env.do(t, http.MethodPost, "/game/reset", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "awaiting_start", out["state"].(map[string]any)["phase"])
}

func TestSelectCategoryRoutes(t *testing.T) {
	env := newTestEnv(t, testConfig())
	tok := env.session(t, "")

	for _, path := range []string{"/game/category/9", "/game/category/abc"} {
		code, out := env.do(t, http.MethodPost, path, tok, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code, path)
		assert.Equal(t, "unknown_category", out["error"])
	}

	code, out := env.do(t, http.MethodPost, "/game/category/1", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Mar", out["state"].(map[string]any)["categoryName"])
	assert.Equal(t, []any{}, out["skipped"])

	code, out = env.do(t, http.MethodPost, "/game/hint", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), out["hintsLeft"])

	code, _ = env.do(t, http.MethodGet, "/game/history/x/0", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestGuessBeforeBegin(t *testing.T) {
	env := newTestEnv(t, testConfig())
	tok := env.session(t, "")

	code, out := env.do(t, http.MethodPost, "/game/guess", tok, map[string]string{"guess": "sol"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "round_not_active", out["error"])
}

func TestGuessRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RPS: 1, Burst: 1}
	env := newTestEnv(t, cfg)
	tok := env.session(t, "")
	env.do(t, http.MethodPost, "/game/begin", tok, nil)

	code, _ := env.do(t, http.MethodPost, "/game/guess", tok, map[string]string{"guess": "lua"})
	assert.Equal(t, http.StatusOK, code)
	code, out := env.do(t, http.MethodPost, "/game/guess", tok, map[string]string{"guess": "estrela"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate_limited", out["error"])
}

func TestEventsEndpoint(t *testing.T) {
	env := newTestEnv(t, testConfig())

	code, out := env.do(t, http.MethodGet, "/events", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, map[string]any{"error": "Method Not Allowed"}, out)

	code, out = env.do(t, http.MethodPost, "/events", "", map[string]any{"player": "Ana"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]any{"error": "Missing action"}, out)

	code, out = env.do(t, http.MethodPost, "/events", "", map[string]any{"action": "solve", "points": 90})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"ok": true}, out)
}

func TestLiveLeaderboard(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ts := httptest.NewServer(env.srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/leaderboard/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var board leaderboardRes
	require.NoError(t, conn.ReadJSON(&board))
	assert.Empty(t, board.Entries)

	env.mirror.UpsertScore("Bia", 50)
	require.NoError(t, conn.ReadJSON(&board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "Bia", board.Entries[0].Player)
	assert.Equal(t, 50, board.Entries[0].TotalPoints)
}
