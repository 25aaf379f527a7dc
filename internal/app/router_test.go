package app

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	adminAPI "tetrabet_backend/internal/api/admin"
	gameAPI "tetrabet_backend/internal/api/game"
	"tetrabet_backend/internal/config"
	"tetrabet_backend/internal/config/env"
	"tetrabet_backend/internal/middleware"
	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository/memory"
	"tetrabet_backend/internal/service/batch"
	"tetrabet_backend/internal/service/economics"
	"tetrabet_backend/internal/service/game"
	"tetrabet_backend/internal/service/wallet"
	"tetrabet_backend/pkg/logger"
	"tetrabet_backend/pkg/token"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminKey = "operator-secret"
	playerID = 11
)

var jwtSecret = []byte("jwt-secret")

type testServer struct {
	router chi.Router
	token  string
}

func newTestServer(t *testing.T, limit config.RateLimit) *testServer {
	t.Helper()

	engine, err := env.ParseEngineConfig(nil)
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	store := memory.NewStore(clock)
	tx := store.TxManager()
	log := logger.Discard()

	econ := economics.NewEconomicsService(store, engine.DefaultEconomics(), engine.ShareBands(), tx, log)
	seed := uint64(0)
	batches := batch.NewBatchService(econ, store, store, store, tx, func() rand.Source {
		seed++
		return rand.NewPCG(seed, seed)
	}, engine.MaxBatchGames(), clock, log)
	games := game.NewGameService(store, store, store, store, store, tx, engine.ClaimAttempts(), engine.Demo(), clock, log)
	wallets := wallet.NewWalletService(store, tx, clock, log)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	require.NoError(t, err)

	tok, err := token.GenerateAccessToken(playerID, model.RolePlayer, jwtSecret, time.Hour)
	require.NoError(t, err)

	router := newRouter(routerDeps{
		log:       log,
		clock:     clock,
		game:      gameAPI.NewHandler(gameAPI.HandlerDeps{Serv: games, Wallet: wallets, Log: log}),
		admin:     adminAPI.NewHandler(adminAPI.HandlerDeps{Economics: econ, Batches: batches, Games: games, Log: log}),
		jwtSecret: jwtSecret,
		adminKey:  hash,
		rateLimit: limit,
		ready:     func(context.Context) error { return nil },
	})

	return &testServer{router: router, token: tok}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	return s.do(t, method, path, body, map[string]string{middleware.AdminKeyHeader: adminKey})
}

func (s *testServer) player(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	return s.do(t, method, path, body, map[string]string{"Authorization": "Bearer " + s.token})
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

var generousLimit = config.RateLimit{PerMinute: 6000, Burst: 1000}

func TestRealMoneyRound(t *testing.T) {
	s := newTestServer(t, generousLimit)

	// без активной пачки игра на деньги закрыта
	rec := s.player(t, http.MethodPost, "/game/start", map[string]any{"bet": "10", "skill_level": 5})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.admin(t, http.MethodPost, "/admin/batches/", map[string]any{
		"name": "week-1", "total_games": 200, "average_bet": "10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	batchID := created["id"].(string)
	assert.Equal(t, "1400", created["player_payout_target"])

	rec = s.admin(t, http.MethodPost, "/admin/batches/"+batchID+"/activate", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// без денег ставку не принять
	rec = s.player(t, http.MethodPost, "/game/start", map[string]any{"bet": "10", "skill_level": 5})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = s.player(t, http.MethodPost, "/wallet/deposit", map[string]any{"amount": "100"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "100", decode[map[string]any](t, rec)["balance"])

	rec = s.player(t, http.MethodPost, "/game/start", map[string]any{"bet": "10", "skill_level": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	started := decode[map[string]any](t, rec)
	sessionID := started["session_id"].(string)
	assert.Equal(t, false, started["is_demo"])

	rec = s.player(t, http.MethodGet, "/wallet/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "90", decode[map[string]any](t, rec)["balance"])

	// нулевой счёт никогда не выигрывает
	rec = s.player(t, http.MethodPost, "/game/complete", map[string]any{"session_id": sessionID, "score": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode[map[string]any](t, rec)
	assert.Equal(t, "0", completed["payout"])
	assert.Equal(t, "90", completed["balance"])

	rec = s.player(t, http.MethodPost, "/game/complete", map[string]any{"session_id": sessionID, "score": 0})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.admin(t, http.MethodGet, "/admin/batches/"+batchID+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode[map[string]any](t, rec)
	assert.EqualValues(t, 199, progress["remaining"])

	rec = s.admin(t, http.MethodGet, "/admin/batches/"+batchID+"/slots?status=played", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.admin(t, http.MethodGet, "/admin/jackpot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "200", decode[map[string]any](t, rec)["total_contributions"])
}

func TestDemoNeedsNoAuth(t *testing.T) {
	s := newTestServer(t, generousLimit)

	rec := s.do(t, http.MethodPost, "/demo/start", map[string]any{"bet": "10"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	started := decode[map[string]any](t, rec)
	assert.Equal(t, true, started["is_demo"])
	assert.Equal(t, "2.5", started["demo_multiplier"])

	// 10000/20000 * 2.5 * 0.4 * 10 = 5
	rec = s.do(t, http.MethodPost, "/demo/complete", map[string]any{
		"session_id": started["session_id"], "score": 10000, "bet": "10",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode[map[string]any](t, rec)
	assert.Equal(t, "5", completed["payout"])
	assert.NotContains(t, completed, "balance")
}

func TestAuthAndAdminKey(t *testing.T) {
	s := newTestServer(t, generousLimit)

	rec := s.do(t, http.MethodPost, "/game/start", map[string]any{"bet": "10"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/wallet/balance", nil, map[string]string{"Authorization": "Bearer junk"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/config", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/config", nil, map[string]string{middleware.AdminKeyHeader: "wrong"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.admin(t, http.MethodGet, "/admin/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["version"])
}

func TestUpdateConfig(t *testing.T) {
	s := newTestServer(t, generousLimit)

	rec := s.admin(t, http.MethodPatch, "/admin/config", map[string]any{
		"player_share_pct": "75", "platform_share_pct": "15",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cfg := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, cfg["version"])
	assert.Equal(t, "75", cfg["player_share_pct"])

	// сумма долей не 100
	rec = s.admin(t, http.MethodPatch, "/admin/config", map[string]any{"player_share_pct": "80"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(t, http.MethodPatch, "/admin/config", map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBadBatchRequests(t *testing.T) {
	s := newTestServer(t, generousLimit)

	rec := s.admin(t, http.MethodPost, "/admin/batches/", map[string]any{
		"name": "bad", "total_games": 0, "average_bet": "10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(t, http.MethodPost, "/admin/batches/not-a-uuid/activate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(t, http.MethodGet, "/admin/batches/active", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.admin(t, http.MethodGet, "/admin/batches/00000000-0000-0000-0000-000000000001/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, config.RateLimit{PerMinute: 1, Burst: 2})

	for range 2 {
		rec := s.do(t, http.MethodPost, "/demo/start", map[string]any{"bet": "1"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/demo/start", map[string]any{"bet": "1"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, generousLimit)

	rec := s.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
