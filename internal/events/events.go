package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservationCreated = "reservation_created"
	EventReservationUpdated = "reservation_updated"
	EventReservationDeleted = "reservation_deleted"
	EventCollectionImported = "collection_imported"
	EventCollectionReset    = "collection_reset"
)

// ReservationEventPayload describes the minimal reservation snapshot for
// event consumers (notifier, metrics).
type ReservationEventPayload struct {
	ReservationID string `json:"reservation_id"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Guests        int    `json:"guests"`
	Type          string `json:"type"`
	TableNumber   int    `json:"table_number,omitempty"`
	CreatedBy     string `json:"created_by,omitempty"`
}

// CollectionEventPayload describes bulk operations (import, reset).
type CollectionEventPayload struct {
	TotalReservations int    `json:"total_reservations"`
	Version           string `json:"version,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; caller decides the concurrency model.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
