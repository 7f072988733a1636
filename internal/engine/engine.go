package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/cardduel/cardduel/internal/events"
	"github.com/cardduel/cardduel/internal/game"
	"github.com/cardduel/cardduel/internal/storage/models"
	"github.com/cardduel/cardduel/internal/storage/repository"
)

const (
	// DefaultHandSize is the number of cards dealt to each player.
	DefaultHandSize = 5

	// DefaultMaxRounds is the number of rounds a match always plays.
	// Matches never stop early on a majority; surrender is the only
	// early exit.
	DefaultMaxRounds = 5
)

// Round winner labels used in move results and summaries.
const (
	RoundWinnerP1   = "p1"
	RoundWinnerP2   = "p2"
	RoundWinnerDraw = "draw"
)

// Engine owns match lifecycle and turn bookkeeping. All mutation of a
// match funnels through its per-match lock.
type Engine struct {
	repo       repository.MatchRepository
	dispatcher *events.Dispatcher
	handSize   int
	maxRounds  int
	locks      *matchLocks
	now        func() time.Time
	newSeed    func() int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithHandSize overrides the dealt hand size.
func WithHandSize(n int) Option {
	return func(e *Engine) { e.handSize = n }
}

// WithMaxRounds overrides the number of rounds per match.
func WithMaxRounds(n int) Option {
	return func(e *Engine) { e.maxRounds = n }
}

// WithSeedSource overrides the deck seed source. Tests use this to get
// reproducible deals.
func WithSeedSource(fn func() int64) Option {
	return func(e *Engine) { e.newSeed = fn }
}

// New creates a match engine backed by repo. Dispatched events
// (round resolved, match finished) go to dispatcher; pass nil to
// disable event dispatch.
func New(repo repository.MatchRepository, dispatcher *events.Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		repo:       repo,
		dispatcher: dispatcher,
		handSize:   DefaultHandSize,
		maxRounds:  DefaultMaxRounds,
		locks:      newMatchLocks(),
		now:        time.Now,
		newSeed:    rand.Int63,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartResult is the outcome of starting a match: the match row plus
// the starting player's own hand. The opponent's hand is never exposed.
type StartResult struct {
	Match *models.Match
	Hand  []*models.HandSlot
}

// Start creates a match between two players, deals both hands from a
// fresh seeded deck, and returns player1's view.
func (e *Engine) Start(ctx context.Context, player1ID, player2ID string) (*StartResult, error) {
	if player1ID == "" || player2ID == "" {
		return nil, invalidArgument("both player ids are required")
	}
	if player1ID == player2ID {
		return nil, invalidArgument("a player cannot play against themselves")
	}

	seed := e.newSeed()
	deck := game.BuildDeck(seed)
	hand1, hand2, _, err := game.Deal(deck, e.handSize)
	if err != nil {
		return nil, fmt.Errorf("failed to deal hands: %w", err)
	}

	match := &models.Match{
		ID:           uuid.New().String(),
		Player1ID:    player1ID,
		Player2ID:    player2ID,
		Status:       models.StatusInProgress,
		FinishReason: models.FinishReasonNone,
		CurrentRound: 1,
		Seed:         seed,
		CreatedAt:    e.now().UTC(),
	}

	slots := make([]*models.HandSlot, 0, len(hand1)+len(hand2))
	for i, card := range hand1 {
		slots = append(slots, &models.HandSlot{MatchID: match.ID, PlayerID: player1ID, SlotIndex: i, Card: card})
	}
	for i, card := range hand2 {
		slots = append(slots, &models.HandSlot{MatchID: match.ID, PlayerID: player2ID, SlotIndex: i, Card: card})
	}

	if err := e.repo.CreateMatch(ctx, match, slots); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	return &StartResult{Match: match, Hand: slots[:len(hand1)]}, nil
}

// MoveResult is the outcome of a submitted move. When Waiting is true
// the round has not resolved yet and the remaining fields are zero.
type MoveResult struct {
	Waiting       bool
	Round         int
	Winner        string // "p1", "p2", or "draw"
	Reason        string
	PointsP1      int
	PointsP2      int
	MatchFinished bool
	MatchWinner   *string
}

// SubmitMove plays the card in the given hand slot for the current
// round. If the opponent already committed a move for this round, the
// round resolves atomically; otherwise the move is recorded and the
// caller waits.
func (e *Engine) SubmitMove(ctx context.Context, matchID, playerID string, slotIndex int) (*MoveResult, error) {
	unlock := e.locks.acquire(matchID)
	defer unlock()

	match, err := e.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if match == nil {
		return nil, notFound("match %s not found", matchID)
	}
	if match.Status == models.StatusFinished {
		return nil, invalidState("match %s is already finished", matchID)
	}
	if !match.IsParticipant(playerID) {
		return nil, forbidden("player %s is not a participant of match %s", playerID, matchID)
	}

	slot, err := e.repo.GetSlot(ctx, matchID, playerID, slotIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, invalidArgument("slot %d is not in your hand", slotIndex)
	}
	if slot.Used {
		return nil, invalidArgument("slot %d has already been played", slotIndex)
	}

	round := match.CurrentRound

	pending, err := e.repo.PendingMove(ctx, matchID, round, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending move: %w", err)
	}
	if pending != nil {
		return nil, conflict("move already submitted for round %d", round)
	}

	move := &models.PendingMove{
		MatchID:   matchID,
		Round:     round,
		PlayerID:  playerID,
		SlotIndex: slotIndex,
		CreatedAt: e.now().UTC(),
	}
	if err := e.repo.RecordMove(ctx, move); err != nil {
		if errors.Is(err, repository.ErrDuplicateMove) {
			return nil, conflict("move already submitted for round %d", round)
		}
		return nil, fmt.Errorf("failed to record move: %w", err)
	}

	opponentID := match.Opponent(playerID)
	opponentMove, err := e.repo.PendingMove(ctx, matchID, round, opponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check opponent move: %w", err)
	}
	if opponentMove == nil {
		return &MoveResult{Waiting: true}, nil
	}

	opponentSlot, err := e.repo.GetSlot(ctx, matchID, opponentID, opponentMove.SlotIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to load opponent slot: %w", err)
	}
	if opponentSlot == nil {
		return nil, fmt.Errorf("opponent slot %d missing for match %s", opponentMove.SlotIndex, matchID)
	}

	return e.resolveRound(ctx, match, slot, opponentSlot, playerID)
}

// resolveRound applies one round's outcome: scoring, round counter,
// pending-move retirement, and the completion rule. Called with the
// match lock held and both cards committed.
func (e *Engine) resolveRound(ctx context.Context, match *models.Match, playerSlot, opponentSlot *models.HandSlot, playerID string) (*MoveResult, error) {
	cardP1, cardP2 := playerSlot.Card, opponentSlot.Card
	if playerID != match.Player1ID {
		cardP1, cardP2 = opponentSlot.Card, playerSlot.Card
	}

	result := game.Resolve(cardP1, cardP2)

	pointsP1, pointsP2 := match.PointsP1, match.PointsP2
	winner := RoundWinnerDraw
	switch result.Winner {
	case game.WinnerA:
		winner = RoundWinnerP1
		pointsP1++
	case game.WinnerB:
		winner = RoundWinnerP2
		pointsP2++
	}

	round := match.CurrentRound
	finished := round >= e.maxRounds
	finishReason := models.FinishReasonNone
	var winnerID *string
	if finished {
		finishReason = models.FinishReasonCompleted
		switch {
		case pointsP1 > pointsP2:
			winnerID = &match.Player1ID
		case pointsP2 > pointsP1:
			winnerID = &match.Player2ID
		}
	}

	update := &repository.RoundUpdate{
		MatchID:      match.ID,
		Round:        round,
		PointsP1:     pointsP1,
		PointsP2:     pointsP2,
		NextRound:    round + 1,
		Finished:     finished,
		FinishReason: finishReason,
		WinnerID:     winnerID,
	}
	if err := e.repo.ApplyRoundResult(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to apply round result: %w", err)
	}

	match.PointsP1 = pointsP1
	match.PointsP2 = pointsP2
	match.CurrentRound = round + 1
	if finished {
		match.Status = models.StatusFinished
		match.FinishReason = finishReason
		match.WinnerID = winnerID
	}

	e.dispatch(ctx, events.TypeRoundResolved, &events.RoundResolved{
		MatchID:  match.ID,
		Round:    round,
		Winner:   winner,
		Reason:   result.Reason,
		PointsP1: pointsP1,
		PointsP2: pointsP2,
		Finished: finished,
	})
	if finished {
		e.dispatchFinished(ctx, match)
	}

	return &MoveResult{
		Round:         round,
		Winner:        winner,
		Reason:        result.Reason,
		PointsP1:      pointsP1,
		PointsP2:      pointsP2,
		MatchFinished: finished,
		MatchWinner:   winnerID,
	}, nil
}

// MatchState is the state of a match visible to one participant: their
// own full hand, but only the cards the opponent has already played.
type MatchState struct {
	Match             *models.Match
	PlayerHand        []*models.HandSlot
	OpponentUsedCards []*models.HandSlot
}

// State returns the match state visible to playerID. It takes no lock;
// reads see a consistent committed snapshot.
func (e *Engine) State(ctx context.Context, matchID, playerID string) (*MatchState, error) {
	match, err := e.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if match == nil {
		return nil, notFound("match %s not found", matchID)
	}
	if !match.IsParticipant(playerID) {
		return nil, forbidden("player %s is not a participant of match %s", playerID, matchID)
	}

	hand, err := e.repo.GetHand(ctx, matchID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hand: %w", err)
	}
	opponentUsed, err := e.repo.UsedCards(ctx, matchID, match.Opponent(playerID))
	if err != nil {
		return nil, fmt.Errorf("failed to load opponent cards: %w", err)
	}

	return &MatchState{Match: match, PlayerHand: hand, OpponentUsedCards: opponentUsed}, nil
}

// Surrender finishes an in-progress match immediately. The other
// participant wins regardless of the current score.
func (e *Engine) Surrender(ctx context.Context, matchID, playerID string) (*models.Match, error) {
	unlock := e.locks.acquire(matchID)
	defer unlock()

	match, err := e.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if match == nil {
		return nil, notFound("match %s not found", matchID)
	}
	if match.Status == models.StatusFinished {
		return nil, invalidState("match %s is already finished", matchID)
	}
	if !match.IsParticipant(playerID) {
		return nil, forbidden("player %s is not a participant of match %s", playerID, matchID)
	}

	winnerID := match.Opponent(playerID)
	if err := e.repo.FinishMatch(ctx, matchID, models.FinishReasonSurrendered, &winnerID); err != nil {
		return nil, fmt.Errorf("failed to finish match: %w", err)
	}

	match.Status = models.StatusFinished
	match.FinishReason = models.FinishReasonSurrendered
	match.WinnerID = &winnerID

	e.dispatchFinished(ctx, match)

	return match, nil
}

// Summary builds the finalization payload for a finished match. Turns
// cover fully resolved rounds only; a round where the surrendering
// player never answered is omitted.
func (e *Engine) Summary(ctx context.Context, match *models.Match) (*models.MatchSummary, error) {
	usedP1, err := e.repo.UsedCards(ctx, match.ID, match.Player1ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player1 cards: %w", err)
	}
	usedP2, err := e.repo.UsedCards(ctx, match.ID, match.Player2ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player2 cards: %w", err)
	}

	byRoundP1 := cardsByRound(usedP1)
	byRoundP2 := cardsByRound(usedP2)

	turns := make([]models.Turn, 0, len(byRoundP1))
	for round := 1; round < match.CurrentRound; round++ {
		cardP1, ok1 := byRoundP1[round]
		cardP2, ok2 := byRoundP2[round]
		if !ok1 || !ok2 {
			continue
		}

		result := game.Resolve(cardP1, cardP2)
		winner := RoundWinnerDraw
		switch result.Winner {
		case game.WinnerA:
			winner = RoundWinnerP1
		case game.WinnerB:
			winner = RoundWinnerP2
		}
		turns = append(turns, models.Turn{
			Round:  round,
			CardP1: cardP1,
			CardP2: cardP2,
			Winner: winner,
			Reason: result.Reason,
		})
	}

	return &models.MatchSummary{
		MatchID:      match.ID,
		Player1ID:    match.Player1ID,
		Player2ID:    match.Player2ID,
		WinnerID:     match.WinnerID,
		PointsP1:     match.PointsP1,
		PointsP2:     match.PointsP2,
		FinishReason: match.FinishReason,
		Turns:        turns,
	}, nil
}

func cardsByRound(slots []*models.HandSlot) map[int]game.Card {
	byRound := make(map[int]game.Card, len(slots))
	for _, slot := range slots {
		if slot.RoundUsed != nil {
			byRound[*slot.RoundUsed] = slot.Card
		}
	}
	return byRound
}

func (e *Engine) dispatch(ctx context.Context, eventType string, payload any) {
	if e.dispatcher == nil {
		return
	}
	e.dispatcher.DispatchAsync(events.Event{
		Type: eventType,
		Data: payload,
		// Observers outlive the triggering request.
		Context: context.WithoutCancel(ctx),
	})
}

// dispatchFinished emits the one-shot finished event. It is only ever
// called from the single IN_PROGRESS -> FINISHED transition, which
// happens under the match lock, so it cannot fire twice for one match.
func (e *Engine) dispatchFinished(ctx context.Context, match *models.Match) {
	if e.dispatcher == nil {
		return
	}
	summary, err := e.Summary(ctx, match)
	if err != nil {
		log.Printf("[engine] failed to build summary for match %s: %v", match.ID, err)
		return
	}
	e.dispatch(ctx, events.TypeMatchFinished, &events.MatchFinished{Summary: summary})
}
