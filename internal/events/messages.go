package events

import "github.com/cardduel/cardduel/internal/storage/models"

// Event types dispatched by the match engine.
const (
	// TypeRoundResolved fires after each resolved round.
	TypeRoundResolved = "match:round"

	// TypeMatchFinished fires exactly once per match, on the single
	// IN_PROGRESS -> FINISHED transition.
	TypeMatchFinished = "match:finished"
)

// RoundResolved is the payload of TypeRoundResolved.
type RoundResolved struct {
	MatchID  string `json:"match_id"`
	Round    int    `json:"round"`
	Winner   string `json:"winner"` // "p1", "p2", "draw"
	Reason   string `json:"reason"`
	PointsP1 int    `json:"points_p1"`
	PointsP2 int    `json:"points_p2"`
	Finished bool   `json:"finished"`
}

// MatchFinished is the payload of TypeMatchFinished.
type MatchFinished struct {
	Summary *models.MatchSummary `json:"summary"`
}
