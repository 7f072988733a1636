package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardduel/cardduel/internal/clients"
	"github.com/cardduel/cardduel/internal/engine"
	"github.com/cardduel/cardduel/internal/storage/models"
)

// mockEngine is a scriptable MatchEngine for handler tests.
type mockEngine struct {
	startResult *engine.StartResult
	moveResult  *engine.MoveResult
	state       *engine.MatchState
	match       *models.Match
	err         error

	gotMatchID  string
	gotPlayerID string
	gotSlot     int
}

func (m *mockEngine) Start(_ context.Context, player1ID, _ string) (*engine.StartResult, error) {
	m.gotPlayerID = player1ID
	return m.startResult, m.err
}

func (m *mockEngine) SubmitMove(_ context.Context, matchID, playerID string, slotIndex int) (*engine.MoveResult, error) {
	m.gotMatchID = matchID
	m.gotPlayerID = playerID
	m.gotSlot = slotIndex
	return m.moveResult, m.err
}

func (m *mockEngine) State(_ context.Context, matchID, playerID string) (*engine.MatchState, error) {
	m.gotMatchID = matchID
	m.gotPlayerID = playerID
	return m.state, m.err
}

func (m *mockEngine) Surrender(_ context.Context, matchID, playerID string) (*models.Match, error) {
	m.gotMatchID = matchID
	m.gotPlayerID = playerID
	return m.match, m.err
}

func newRouter(h *MatchHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/matches", h.CreateMatch)
	r.Get("/matches/{matchID}", h.GetMatch)
	r.Post("/matches/{matchID}/move", h.SubmitMove)
	r.Post("/matches/{matchID}/surrender", h.Surrender)
	return r
}

// authed attaches a verified identity the way the auth middleware does.
func authed(req *http.Request, subject string) *http.Request {
	identity := &clients.VerifiedIdentity{Subject: subject}
	return req.WithContext(WithIdentity(req.Context(), identity))
}

func TestCreateMatch(t *testing.T) {
	eng := &mockEngine{
		startResult: &engine.StartResult{
			Match: &models.Match{ID: "m1", Player1ID: "alice", Player2ID: "bob", Status: models.StatusInProgress},
			Hand:  []*models.HandSlot{{SlotIndex: 0}},
		},
	}
	router := newRouter(NewMatchHandler(eng))

	body, _ := json.Marshal(CreateMatchRequest{Player1ID: "alice", Player2ID: "bob"})
	req := authed(httptest.NewRequest(http.MethodPost, "/matches", bytes.NewReader(body)), "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data MatchStateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "m1", envelope.Data.Match.ID)
	assert.Len(t, envelope.Data.Hand, 1)
}

func TestCreateMatchIdentityMismatch(t *testing.T) {
	eng := &mockEngine{}
	router := newRouter(NewMatchHandler(eng))

	body, _ := json.Marshal(CreateMatchRequest{Player1ID: "alice", Player2ID: "bob"})
	req := authed(httptest.NewRequest(http.MethodPost, "/matches", bytes.NewReader(body)), "mallory")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, eng.gotPlayerID, "engine should not be reached")
}

func TestCreateMatchNoIdentity(t *testing.T) {
	router := newRouter(NewMatchHandler(&mockEngine{}))

	body, _ := json.Marshal(CreateMatchRequest{Player1ID: "alice", Player2ID: "bob"})
	req := httptest.NewRequest(http.MethodPost, "/matches", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateMatchBadBody(t *testing.T) {
	router := newRouter(NewMatchHandler(&mockEngine{}))

	req := authed(httptest.NewRequest(http.MethodPost, "/matches", bytes.NewReader([]byte("{not json"))), "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMatchDefaultsToIdentity(t *testing.T) {
	eng := &mockEngine{
		state: &engine.MatchState{
			Match: &models.Match{ID: "m1", Player1ID: "alice", Player2ID: "bob"},
		},
	}
	router := newRouter(NewMatchHandler(eng))

	req := authed(httptest.NewRequest(http.MethodGet, "/matches/m1", nil), "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "m1", eng.gotMatchID)
	assert.Equal(t, "alice", eng.gotPlayerID)
}

func TestGetMatchPlayerIDMismatch(t *testing.T) {
	router := newRouter(NewMatchHandler(&mockEngine{}))

	req := authed(httptest.NewRequest(http.MethodGet, "/matches/m1?player_id=bob", nil), "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitMove(t *testing.T) {
	winner := "alice"
	eng := &mockEngine{
		moveResult: &engine.MoveResult{
			Round:         5,
			Winner:        engine.RoundWinnerP1,
			Reason:        "rock beats scissors",
			PointsP1:      3,
			PointsP2:      2,
			MatchFinished: true,
			MatchWinner:   &winner,
		},
	}
	router := newRouter(NewMatchHandler(eng))

	slot := 2
	body, _ := json.Marshal(MoveRequest{PlayerID: "alice", SlotIndex: &slot})
	req := authed(httptest.NewRequest(http.MethodPost, "/matches/m1/move", bytes.NewReader(body)), "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, eng.gotSlot)

	var envelope struct {
		Data MoveResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Waiting)
	assert.Equal(t, "rock beats scissors", envelope.Data.Reason)
	assert.True(t, envelope.Data.MatchFinished)
	require.NotNil(t, envelope.Data.MatchWinner)
	assert.Equal(t, "alice", *envelope.Data.MatchWinner)
}

func TestSubmitMoveMissingSlot(t *testing.T) {
	router := newRouter(NewMatchHandler(&mockEngine{}))

	body, _ := json.Marshal(map[string]any{"player_id": "alice"})
	req := authed(httptest.NewRequest(http.MethodPost, "/matches/m1/move", bytes.NewReader(body)), "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitMoveEngineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &engine.Error{Kind: engine.KindNotFound, Message: "match m1 not found"}, http.StatusNotFound},
		{"finished", &engine.Error{Kind: engine.KindInvalidState, Message: "match m1 is already finished"}, http.StatusUnprocessableEntity},
		{"duplicate", &engine.Error{Kind: engine.KindConflict, Message: "move already submitted"}, http.StatusConflict},
		{"bad slot", &engine.Error{Kind: engine.KindInvalidArgument, Message: "slot out of range"}, http.StatusBadRequest},
		{"not participant", &engine.Error{Kind: engine.KindForbidden, Message: "not a participant"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(NewMatchHandler(&mockEngine{err: tt.err}))

			slot := 0
			body, _ := json.Marshal(MoveRequest{PlayerID: "alice", SlotIndex: &slot})
			req := authed(httptest.NewRequest(http.MethodPost, "/matches/m1/move", bytes.NewReader(body)), "alice")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSurrender(t *testing.T) {
	winner := "bob"
	eng := &mockEngine{
		match: &models.Match{
			ID:           "m1",
			Status:       models.StatusFinished,
			FinishReason: models.FinishReasonSurrendered,
			WinnerID:     &winner,
		},
	}
	router := newRouter(NewMatchHandler(eng))

	req := authed(httptest.NewRequest(http.MethodPost, "/matches/m1/surrender", nil), "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", eng.gotPlayerID)

	var envelope struct {
		Data models.Match `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.FinishReasonSurrendered, envelope.Data.FinishReason)
	require.NotNil(t, envelope.Data.WinnerID)
	assert.Equal(t, "bob", *envelope.Data.WinnerID)
}
