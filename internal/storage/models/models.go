// Package models defines the persistence structs shared by the storage
// repositories and the match engine.
package models

import (
	"time"

	"github.com/cardduel/cardduel/internal/game"
)

// Match status values.
const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// Finish reasons for a finished match.
const (
	FinishReasonNone        = "none"
	FinishReasonCompleted   = "completed"
	FinishReasonSurrendered = "surrendered"
)

// Match is a persisted match row. WinnerID is nil while the match is in
// progress and stays nil for a drawn match.
type Match struct {
	ID           string    `json:"match_id"`
	Player1ID    string    `json:"player1_id"`
	Player2ID    string    `json:"player2_id"`
	Status       string    `json:"status"`
	FinishReason string    `json:"finish_reason"`
	CurrentRound int       `json:"current_round"`
	PointsP1     int       `json:"points_p1"`
	PointsP2     int       `json:"points_p2"`
	WinnerID     *string   `json:"winner_id"`
	Seed         int64     `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsParticipant reports whether playerID is one of the two players.
func (m *Match) IsParticipant(playerID string) bool {
	return playerID == m.Player1ID || playerID == m.Player2ID
}

// Opponent returns the other participant's id. Callers must have checked
// IsParticipant first.
func (m *Match) Opponent(playerID string) string {
	if playerID == m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}

// HandSlot is one dealt card in a player's hand. SlotIndex is the
// external handle players use to play the card; it never changes once
// dealt. RoundUsed is nil until the slot is played.
type HandSlot struct {
	MatchID   string    `json:"-"`
	PlayerID  string    `json:"-"`
	SlotIndex int       `json:"slot_index"`
	Card      game.Card `json:"card"`
	Used      bool      `json:"used"`
	RoundUsed *int      `json:"round_used,omitempty"`
}

// PendingMove is a committed-but-unresolved move for the current round.
// The (MatchID, Round, PlayerID) tuple is unique in the database, so a
// duplicate submission fails at the storage layer even if it slips past
// the engine's lock.
type PendingMove struct {
	MatchID   string
	Round     int
	PlayerID  string
	SlotIndex int
	CreatedAt time.Time
}

// Turn is one resolved round in a match summary.
type Turn struct {
	Round  int       `json:"round"`
	CardP1 game.Card `json:"card_p1"`
	CardP2 game.Card `json:"card_p2"`
	Winner string    `json:"winner"` // "p1", "p2", or "draw"
	Reason string    `json:"reason"`
}

// MatchSummary is the finalization payload for a finished match.
type MatchSummary struct {
	MatchID      string  `json:"external_match_id"`
	Player1ID    string  `json:"player1_external_id"`
	Player2ID    string  `json:"player2_external_id"`
	WinnerID     *string `json:"winner_external_id"`
	PointsP1     int     `json:"player1_score"`
	PointsP2     int     `json:"player2_score"`
	FinishReason string  `json:"finish_reason"`
	Turns        []Turn  `json:"turns"`
}
