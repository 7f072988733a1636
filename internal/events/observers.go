package events

import (
	"context"
	"fmt"

	"github.com/cardduel/cardduel/internal/storage/models"
)

// Finalizer delivers a finished match's summary to the player service.
// Decoupled behind an interface so tests can swap in a fake.
type Finalizer interface {
	FinalizeMatch(ctx context.Context, summary *models.MatchSummary) error
}

// FinalizeObserver pushes match:finished events to the Finalizer.
// Errors are returned to the dispatcher, which logs and drops them:
// finalization never alters match state or fails the triggering
// request.
type FinalizeObserver struct {
	finalizer Finalizer
}

// NewFinalizeObserver creates an observer that forwards finished
// matches to finalizer.
func NewFinalizeObserver(finalizer Finalizer) *FinalizeObserver {
	return &FinalizeObserver{finalizer: finalizer}
}

// OnEvent delivers the match summary.
func (o *FinalizeObserver) OnEvent(event Event) error {
	payload, ok := event.Data.(*MatchFinished)
	if !ok || payload.Summary == nil {
		return fmt.Errorf("unexpected payload for %s event", event.Type)
	}

	ctx := event.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return o.finalizer.FinalizeMatch(ctx, payload.Summary)
}

// Name returns the observer name.
func (o *FinalizeObserver) Name() string {
	return "FinalizeObserver"
}

// ShouldHandle filters for match:finished events.
func (o *FinalizeObserver) ShouldHandle(eventType string) bool {
	return eventType == TypeMatchFinished
}
