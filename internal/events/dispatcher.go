// Package events implements the observer pattern that decouples the
// match engine from its side effects: finalization notification and
// websocket fan-out both subscribe here.
package events

import (
	"context"
	"log"
	"sync"
)

// Event is a domain event dispatched to observers.
type Event struct {
	// Type is the event type (e.g. "match:finished").
	Type string

	// Data is the typed event payload.
	Data any

	// Context carries the execution context of the triggering request.
	// Observers doing their own I/O should derive from it, not block it.
	Context context.Context
}

// Observer is notified of dispatched events.
type Observer interface {
	// OnEvent handles one event. Errors are logged by the dispatcher,
	// never propagated to the dispatching caller.
	OnEvent(event Event) error

	// Name returns a human-readable observer name for logging.
	Name() string

	// ShouldHandle filters the event types this observer cares about.
	ShouldHandle(eventType string) bool
}

// Dispatcher distributes events to registered observers. Thread-safe.
type Dispatcher struct {
	observers []Observer
	mu        sync.RWMutex
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{observers: make([]Observer, 0)}
}

// Register adds an observer. It will receive all future events that
// pass its ShouldHandle filter.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	log.Printf("[events] registered observer: %s", observer.Name())
}

// Unregister removes an observer.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers[i] = d.observers[len(d.observers)-1]
			d.observers = d.observers[:len(d.observers)-1]
			log.Printf("[events] unregistered observer: %s", observer.Name())
			return
		}
	}
}

// Dispatch notifies observers sequentially, in registration order.
// Observer errors are logged and do not stop dispatch.
func (d *Dispatcher) Dispatch(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			log.Printf("[events] observer %s failed on %s: %v", observer.Name(), event.Type, err)
		}
	}
}

// DispatchAsync notifies each observer in its own goroutine. Used for
// events whose handlers do network I/O and must not block the caller.
func (d *Dispatcher) DispatchAsync(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		go func(obs Observer) {
			if err := obs.OnEvent(event); err != nil {
				log.Printf("[events] observer %s failed on %s: %v", obs.Name(), event.Type, err)
			}
		}(observer)
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

func (d *Dispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}
