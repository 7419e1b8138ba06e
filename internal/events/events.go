// Package events is an in-process publish/subscribe bus for domain changes.
package events

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	ListingCreated      = "listing.created"
	ListingUpdated      = "listing.updated"
	ListingDeactivated  = "listing.deactivated"
	ListingDeleted      = "listing.deleted"
	MessageSent         = "message.sent"
	MessageRead         = "message.read"
	UserLocationUpdated = "user.location_updated"
)

type Event struct {
	Topic      string
	EntityID   int64
	ActorID    int64
	Payload    interface{}
	OccurredAt time.Time
}

type Handler func(ctx context.Context, event Event)

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Bus delivers every event synchronously to the handlers of its topic,
// in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[topic] = append(b.handlers[topic], handler)
}

func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Topic]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

// LogHandler writes every event it receives to the standard logger.
func LogHandler(_ context.Context, event Event) {
	log.Printf("Событие %s: объект %d, пользователь %d", event.Topic, event.EntityID, event.ActorID)
}

func AllTopics() []string {
	return []string{
		ListingCreated,
		ListingUpdated,
		ListingDeactivated,
		ListingDeleted,
		MessageSent,
		MessageRead,
		UserLocationUpdated,
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
