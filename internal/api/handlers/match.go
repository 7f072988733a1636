package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardduel/cardduel/internal/api/response"
	"github.com/cardduel/cardduel/internal/engine"
	"github.com/cardduel/cardduel/internal/storage/models"
)

// MatchEngine is the slice of the engine the match handlers use.
type MatchEngine interface {
	Start(ctx context.Context, player1ID, player2ID string) (*engine.StartResult, error)
	SubmitMove(ctx context.Context, matchID, playerID string, slotIndex int) (*engine.MoveResult, error)
	State(ctx context.Context, matchID, playerID string) (*engine.MatchState, error)
	Surrender(ctx context.Context, matchID, playerID string) (*models.Match, error)
}

// MatchHandler handles match lifecycle requests.
type MatchHandler struct {
	engine MatchEngine
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(eng MatchEngine) *MatchHandler {
	return &MatchHandler{engine: eng}
}

// CreateMatchRequest is the body for starting a match.
type CreateMatchRequest struct {
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`
}

// MatchStateResponse is one participant's view of a match.
type MatchStateResponse struct {
	Match             *models.Match      `json:"match"`
	Hand              []*models.HandSlot `json:"hand"`
	OpponentUsedCards []*models.HandSlot `json:"opponent_used_cards,omitempty"`
}

// MoveRequest is the body for submitting a move.
type MoveRequest struct {
	PlayerID  string `json:"player_id"`
	SlotIndex *int   `json:"slot_index"`
}

// MoveResponse reports the outcome of a submitted move. Round fields
// are present only once the round has resolved.
type MoveResponse struct {
	Waiting       bool    `json:"waiting"`
	Round         int     `json:"round,omitempty"`
	Winner        string  `json:"winner,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	PointsP1      int     `json:"points_p1"`
	PointsP2      int     `json:"points_p2"`
	MatchFinished bool    `json:"match_finished"`
	MatchWinner   *string `json:"match_winner,omitempty"`
}

// SurrenderRequest is the body for surrendering a match.
type SurrenderRequest struct {
	PlayerID string `json:"player_id"`
}

// actingPlayer resolves the player the request acts for and enforces
// that it matches the authenticated identity. An empty claimed id
// defaults to the identity's subject.
func actingPlayer(w http.ResponseWriter, r *http.Request, claimed string) (string, bool) {
	identity := IdentityFrom(r.Context())
	if identity == nil {
		response.Unauthorized(w, errors.New("authentication required"))
		return "", false
	}
	if claimed == "" {
		return identity.Subject, true
	}
	if claimed != identity.Subject {
		response.Forbidden(w, errors.New("token subject does not match player id"))
		return "", false
	}
	return claimed, true
}

// CreateMatch starts a new match. The caller must be player1.
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	playerID, ok := actingPlayer(w, r, req.Player1ID)
	if !ok {
		return
	}
	req.Player1ID = playerID

	result, err := h.engine.Start(r.Context(), req.Player1ID, req.Player2ID)
	if err != nil {
		response.EngineError(w, err)
		return
	}

	response.Created(w, MatchStateResponse{
		Match: result.Match,
		Hand:  result.Hand,
	})
}

// GetMatch returns the match state visible to the requesting player:
// their own hand plus the cards the opponent has already played.
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		response.BadRequest(w, errors.New("match id is required"))
		return
	}

	playerID, ok := actingPlayer(w, r, r.URL.Query().Get("player_id"))
	if !ok {
		return
	}

	state, err := h.engine.State(r.Context(), matchID, playerID)
	if err != nil {
		response.EngineError(w, err)
		return
	}

	response.Success(w, MatchStateResponse{
		Match:             state.Match,
		Hand:              state.PlayerHand,
		OpponentUsedCards: state.OpponentUsedCards,
	})
}

// SubmitMove plays one hand slot for the current round.
func (h *MatchHandler) SubmitMove(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		response.BadRequest(w, errors.New("match id is required"))
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.SlotIndex == nil {
		response.BadRequest(w, errors.New("slot_index is required"))
		return
	}

	playerID, ok := actingPlayer(w, r, req.PlayerID)
	if !ok {
		return
	}

	result, err := h.engine.SubmitMove(r.Context(), matchID, playerID, *req.SlotIndex)
	if err != nil {
		response.EngineError(w, err)
		return
	}

	response.Success(w, MoveResponse{
		Waiting:       result.Waiting,
		Round:         result.Round,
		Winner:        result.Winner,
		Reason:        result.Reason,
		PointsP1:      result.PointsP1,
		PointsP2:      result.PointsP2,
		MatchFinished: result.MatchFinished,
		MatchWinner:   result.MatchWinner,
	})
}

// Surrender concedes an in-progress match; the opponent wins.
func (h *MatchHandler) Surrender(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		response.BadRequest(w, errors.New("match id is required"))
		return
	}

	var req SurrenderRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, errors.New("invalid request body"))
			return
		}
	}

	playerID, ok := actingPlayer(w, r, req.PlayerID)
	if !ok {
		return
	}

	match, err := h.engine.Surrender(r.Context(), matchID, playerID)
	if err != nil {
		response.EngineError(w, err)
		return
	}

	response.Success(w, match)
}
