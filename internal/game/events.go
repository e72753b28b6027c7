package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/silentapi/riftbounddecks/internal/catalog"
)

// EventType indicates the category of a match event.
type EventType string

const (
	EventMatchInitialized EventType = "MATCH_INITIALIZED"
	EventZoneShuffled     EventType = "ZONE_SHUFFLED"
	EventZoneChange       EventType = "ZONE_CHANGE"
	EventCardDrawn        EventType = "CARD_DRAWN"
	EventCardDiscarded    EventType = "CARD_DISCARDED"
	EventRunesChanneled   EventType = "RUNES_CHANNELED"
	EventRuneExhausted    EventType = "RUNE_EXHAUSTED"
	EventRuneAwakened     EventType = "RUNE_AWAKENED"
	EventLegendExhausted  EventType = "LEGEND_EXHAUSTED"
	EventLegendAwakened   EventType = "LEGEND_AWAKENED"

	// EventPresentationComplete is published by the presentation layer once
	// it has finished rendering a transition. The match never publishes it.
	EventPresentationComplete EventType = "PRESENTATION_COMPLETE"
)

// Event represents a state change that the presentation layer may react to.
type Event struct {
	Type        EventType
	ID          string // Unique event ID
	SessionID   string
	Sequence    int // snapshot sequence the event produced
	CardID      catalog.CardID
	FromZone    Zone
	ToZone      Zone
	Index       int // source index when relevant, -1 otherwise
	Amount      int // cards moved, runes toggled, ...
	Timestamp   time.Time
	Metadata    map[string]string
	Description string
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener              // All listeners
	typedListeners map[EventType][]TypedListener // Listeners filtered by event type
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
// Listeners must not publish on the same bus.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}

	if typedListeners, ok := bus.typedListeners[event.Type]; ok {
		for _, listener := range typedListeners {
			listener.Callback(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, sessionID string) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Index:     -1,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewMoveEvent creates a zone change event for a single card.
func NewMoveEvent(eventType EventType, sessionID string, card catalog.CardID, from, to Zone, index int) Event {
	evt := NewEvent(eventType, sessionID)
	evt.CardID = card
	evt.FromZone = from
	evt.ToZone = to
	evt.Index = index
	evt.Amount = 1
	return evt
}
