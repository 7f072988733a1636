package websocket

import (
	"testing"

	"github.com/cardduel/cardduel/internal/events"
)

func TestObserverShouldHandle(t *testing.T) {
	obs := NewObserver(NewHub())

	if !obs.ShouldHandle(events.TypeRoundResolved) {
		t.Error("observer should forward round results")
	}
	if !obs.ShouldHandle(events.TypeMatchFinished) {
		t.Error("observer should forward match finishes")
	}
	if obs.ShouldHandle("some:other") {
		t.Error("observer should ignore unrelated events")
	}
}

func TestObserverBroadcasts(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	obs := NewObserver(hub)
	err := obs.OnEvent(events.Event{
		Type: events.TypeRoundResolved,
		Data: &events.RoundResolved{MatchID: "m1", Round: 1, Winner: "p1"},
	})
	if err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}
}

func TestObserverNilHub(t *testing.T) {
	obs := NewObserver(nil)

	if err := obs.OnEvent(events.Event{Type: events.TypeMatchFinished}); err != nil {
		t.Fatalf("OnEvent with nil hub should be a no-op, got %v", err)
	}
}
