package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardduel/cardduel/internal/storage/models"
)

func testPlayersConfig(baseURL string) *PlayersConfig {
	return &PlayersConfig{
		BaseURL:     baseURL,
		APIKey:      "service-key",
		Timeout:     time.Second,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func testSummary() *models.MatchSummary {
	winner := "alice"
	return &models.MatchSummary{
		MatchID:      "match-1",
		Player1ID:    "alice",
		Player2ID:    "bob",
		WinnerID:     &winner,
		PointsP1:     3,
		PointsP2:     2,
		FinishReason: models.FinishReasonCompleted,
	}
}

func TestFinalizeMatchSuccess(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/matches", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "service-key", r.Header.Get("X-API-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 7}`))
	}))
	defer server.Close()

	client := NewPlayersClient(testPlayersConfig(server.URL))

	require.NoError(t, client.FinalizeMatch(context.Background(), testSummary()))

	assert.Equal(t, "match-1", received["external_match_id"])
	assert.Equal(t, "alice", received["player1_external_id"])
	assert.Equal(t, "bob", received["player2_external_id"])
	assert.Equal(t, "alice", received["winner_external_id"])
	assert.Equal(t, float64(3), received["player1_score"])
	assert.Equal(t, float64(2), received["player2_score"])
}

func TestFinalizeMatchDrawHasNullWinner(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewPlayersClient(testPlayersConfig(server.URL))

	summary := testSummary()
	summary.WinnerID = nil
	require.NoError(t, client.FinalizeMatch(context.Background(), summary))

	winner, present := received["winner_external_id"]
	assert.True(t, present)
	assert.Nil(t, winner)
}

func TestFinalizeMatchRetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewPlayersClient(testPlayersConfig(server.URL))

	require.NoError(t, client.FinalizeMatch(context.Background(), testSummary()))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFinalizeMatchGivesUpAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewPlayersClient(testPlayersConfig(server.URL))

	err := client.FinalizeMatch(context.Background(), testSummary())
	assert.Error(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}
