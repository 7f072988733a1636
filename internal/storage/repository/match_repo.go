// Package repository provides data access layers for match state.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cardduel/cardduel/internal/game"
	"github.com/cardduel/cardduel/internal/storage/models"
)

// ErrDuplicateMove is returned when a pending move already exists for
// the same (match, round, player) tuple. The uniqueness constraint in
// the database backstops the engine's per-match lock.
var ErrDuplicateMove = errors.New("pending move already recorded for this round")

// RoundUpdate describes the state changes of one resolved round.
type RoundUpdate struct {
	MatchID      string
	Round        int // the round that just resolved
	PointsP1     int
	PointsP2     int
	NextRound    int
	Finished     bool
	FinishReason string
	WinnerID     *string
}

// MatchRepository handles database operations for matches, hand slots,
// and pending moves.
type MatchRepository interface {
	// CreateMatch inserts a match and its dealt hand slots in one transaction.
	CreateMatch(ctx context.Context, match *models.Match, slots []*models.HandSlot) error

	// GetMatch retrieves a match by ID. Returns (nil, nil) when the match
	// does not exist.
	GetMatch(ctx context.Context, id string) (*models.Match, error)

	// GetHand retrieves all hand slots for a player, ordered by slot index.
	GetHand(ctx context.Context, matchID, playerID string) ([]*models.HandSlot, error)

	// GetSlot retrieves a single hand slot. Returns (nil, nil) when the
	// slot does not exist.
	GetSlot(ctx context.Context, matchID, playerID string, slotIndex int) (*models.HandSlot, error)

	// UsedCards retrieves a player's played slots, ordered by the round
	// they were used in.
	UsedCards(ctx context.Context, matchID, playerID string) ([]*models.HandSlot, error)

	// PendingMove retrieves a player's pending move for a round.
	// Returns (nil, nil) when no move is pending.
	PendingMove(ctx context.Context, matchID string, round int, playerID string) (*models.PendingMove, error)

	// RecordMove marks the slot used and inserts the pending move in one
	// transaction. Returns ErrDuplicateMove if the player already has a
	// pending move for this round.
	RecordMove(ctx context.Context, move *models.PendingMove) error

	// ApplyRoundResult commits one resolved round: score, round counter,
	// completion state, and retirement of the round's pending moves, all
	// in one transaction.
	ApplyRoundResult(ctx context.Context, update *RoundUpdate) error

	// FinishMatch transitions a match to finished (surrender path).
	FinishMatch(ctx context.Context, matchID, finishReason string, winnerID *string) error
}

// matchRepository is the concrete sqlite implementation of MatchRepository.
type matchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *sql.DB) MatchRepository {
	return &matchRepository{db: db}
}

// CreateMatch inserts a match and its dealt hand slots in one transaction.
func (r *matchRepository) CreateMatch(ctx context.Context, match *models.Match, slots []*models.HandSlot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (
			id, player1_id, player2_id, status, finish_reason,
			current_round, points_p1, points_p2, winner_id, seed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		match.ID,
		match.Player1ID,
		match.Player2ID,
		match.Status,
		match.FinishReason,
		match.CurrentRound,
		match.PointsP1,
		match.PointsP2,
		match.WinnerID,
		match.Seed,
		match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	for _, slot := range slots {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO match_cards (
				match_id, player_id, slot_index, card_id, category, power, used, round_used
			) VALUES (?, ?, ?, ?, ?, ?, 0, NULL)
		`,
			slot.MatchID,
			slot.PlayerID,
			slot.SlotIndex,
			slot.Card.ID,
			string(slot.Card.Category),
			slot.Card.Power,
		)
		if err != nil {
			return fmt.Errorf("failed to create hand slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match creation: %w", err)
	}
	return nil
}

// GetMatch retrieves a match by ID.
func (r *matchRepository) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, player1_id, player2_id, status, finish_reason,
		       current_round, points_p1, points_p2, winner_id, seed, created_at
		FROM matches
		WHERE id = ?
	`, id)

	match := &models.Match{}
	var winnerID sql.NullString
	var createdAt time.Time

	err := row.Scan(
		&match.ID,
		&match.Player1ID,
		&match.Player2ID,
		&match.Status,
		&match.FinishReason,
		&match.CurrentRound,
		&match.PointsP1,
		&match.PointsP2,
		&winnerID,
		&match.Seed,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if winnerID.Valid {
		match.WinnerID = &winnerID.String
	}
	match.CreatedAt = createdAt
	return match, nil
}

// GetHand retrieves all hand slots for a player, ordered by slot index.
func (r *matchRepository) GetHand(ctx context.Context, matchID, playerID string) ([]*models.HandSlot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, player_id, slot_index, card_id, category, power, used, round_used
		FROM match_cards
		WHERE match_id = ? AND player_id = ?
		ORDER BY slot_index
	`, matchID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hand: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSlots(rows)
}

// GetSlot retrieves a single hand slot.
func (r *matchRepository) GetSlot(ctx context.Context, matchID, playerID string, slotIndex int) (*models.HandSlot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, player_id, slot_index, card_id, category, power, used, round_used
		FROM match_cards
		WHERE match_id = ? AND player_id = ? AND slot_index = ?
	`, matchID, playerID, slotIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	slots, err := scanSlots(rows)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}
	return slots[0], nil
}

// UsedCards retrieves a player's played slots, ordered by round used.
func (r *matchRepository) UsedCards(ctx context.Context, matchID, playerID string) ([]*models.HandSlot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, player_id, slot_index, card_id, category, power, used, round_used
		FROM match_cards
		WHERE match_id = ? AND player_id = ? AND used = 1
		ORDER BY round_used
	`, matchID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get used cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSlots(rows)
}

// PendingMove retrieves a player's pending move for a round.
func (r *matchRepository) PendingMove(ctx context.Context, matchID string, round int, playerID string) (*models.PendingMove, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT match_id, round, player_id, slot_index, created_at
		FROM pending_moves
		WHERE match_id = ? AND round = ? AND player_id = ?
	`, matchID, round, playerID)

	move := &models.PendingMove{}
	err := row.Scan(&move.MatchID, &move.Round, &move.PlayerID, &move.SlotIndex, &move.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending move: %w", err)
	}
	return move, nil
}

// RecordMove marks the slot used and inserts the pending move in one
// transaction.
func (r *matchRepository) RecordMove(ctx context.Context, move *models.PendingMove) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pending_moves (match_id, round, player_id, slot_index, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		move.MatchID,
		move.Round,
		move.PlayerID,
		move.SlotIndex,
		move.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMove
		}
		return fmt.Errorf("failed to record pending move: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE match_cards
		SET used = 1, round_used = ?
		WHERE match_id = ? AND player_id = ? AND slot_index = ? AND used = 0
	`,
		move.Round,
		move.MatchID,
		move.PlayerID,
		move.SlotIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to mark slot used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check slot update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("slot %d is not an unused slot of player %s", move.SlotIndex, move.PlayerID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}
	return nil
}

// ApplyRoundResult commits one resolved round in a single transaction.
func (r *matchRepository) ApplyRoundResult(ctx context.Context, update *RoundUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	status := models.StatusInProgress
	if update.Finished {
		status = models.StatusFinished
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE matches
		SET points_p1 = ?, points_p2 = ?, current_round = ?,
		    status = ?, finish_reason = ?, winner_id = ?
		WHERE id = ?
	`,
		update.PointsP1,
		update.PointsP2,
		update.NextRound,
		status,
		update.FinishReason,
		update.WinnerID,
		update.MatchID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply round result: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM pending_moves
		WHERE match_id = ? AND round = ?
	`, update.MatchID, update.Round)
	if err != nil {
		return fmt.Errorf("failed to retire pending moves: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit round result: %w", err)
	}
	return nil
}

// FinishMatch transitions a match to finished (surrender path).
func (r *matchRepository) FinishMatch(ctx context.Context, matchID, finishReason string, winnerID *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE matches
		SET status = ?, finish_reason = ?, winner_id = ?
		WHERE id = ? AND status = ?
	`,
		models.StatusFinished,
		finishReason,
		winnerID,
		matchID,
		models.StatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to finish match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check finish update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match %s is not in progress", matchID)
	}
	return nil
}

// scanSlots reads hand slot rows into models.
func scanSlots(rows *sql.Rows) ([]*models.HandSlot, error) {
	var slots []*models.HandSlot
	for rows.Next() {
		slot := &models.HandSlot{}
		var category string
		var used int
		var roundUsed sql.NullInt64

		err := rows.Scan(
			&slot.MatchID,
			&slot.PlayerID,
			&slot.SlotIndex,
			&slot.Card.ID,
			&category,
			&slot.Card.Power,
			&used,
			&roundUsed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hand slot: %w", err)
		}

		slot.Card.Category = game.Category(category)
		slot.Used = used == 1
		if roundUsed.Valid {
			round := int(roundUsed.Int64)
			slot.RoundUsed = &round
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hand slots: %w", err)
	}
	return slots, nil
}

// isUniqueViolation reports whether err is a sqlite uniqueness
// constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
