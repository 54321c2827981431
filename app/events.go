package app

import (
	"context"
	"sync"

	"city-forecast/models"
)

// EventName identifies a UI event
type EventName string

const EventSelectionChanged EventName = "selection.changed"

// Where a selection came from
const (
	SourceStartup = "startup"
	SourceChange  = "change" // dropdown
	SourceClick   = "click"  // "get forecast" button
)

// Event is anything that can be emitted on a Bus
type Event interface {
	Name() EventName
}

// SelectionChanged carries the city picked by the user
type SelectionChanged struct {
	Index  int
	City   models.City
	Source string
	// Background leaves the fetch running after Emit returns
	Background bool
}

func (SelectionChanged) Name() EventName { return EventSelectionChanged }

// Handler reacts to an event
type Handler func(ctx context.Context, event Event)

// Bus dispatches events to the handlers registered for their name
type Bus struct {
	mutex    sync.RWMutex
	handlers map[EventName][]Handler
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventName][]Handler)}
}

// On registers h for events named name
func (b *Bus) On(name EventName, h Handler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Emit runs the handlers for the event in the caller's goroutine, in
// registration order, and returns how many ran.
func (b *Bus) Emit(ctx context.Context, event Event) int {
	b.mutex.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Name()]...)
	b.mutex.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
	return len(handlers)
}
