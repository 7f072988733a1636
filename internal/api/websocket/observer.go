package websocket

import (
	"log"

	"github.com/cardduel/cardduel/internal/events"
)

// Observer forwards match events to connected spectators. It
// implements events.Observer and broadcasts every round result and
// match finish through the hub.
type Observer struct {
	hub *Hub
}

// NewObserver creates an observer backed by the given hub.
func NewObserver(hub *Hub) *Observer {
	return &Observer{hub: hub}
}

// OnEvent broadcasts the event payload to all connected spectators.
func (o *Observer) OnEvent(event events.Event) error {
	if o.hub == nil {
		log.Printf("[ws] dropping event %s: no hub", event.Type)
		return nil
	}

	o.hub.Broadcast(Message{
		Type: event.Type,
		Data: event.Data,
	})
	return nil
}

// Name returns the observer's name for dispatcher logging.
func (o *Observer) Name() string { return "WebSocketObserver" }

// ShouldHandle forwards round results and match finishes.
func (o *Observer) ShouldHandle(eventType string) bool {
	return eventType == events.TypeRoundResolved || eventType == events.TypeMatchFinished
}

var _ events.Observer = (*Observer)(nil)
