package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Event types published after a successful write.
const (
	UserRegistered = "user.registered"
	UserDeleted    = "user.deleted"
	ExpenseCreated = "expense.created"
	ExpenseUpdated = "expense.updated"
	ExpenseDeleted = "expense.deleted"
)

// Event is a domain event. Only identifiers are carried; consumers read the current state
// from the API.
type Event struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates an event stamped with the current time.
func New(eventType string, id int64, userID *int64) Event {
	return Event{
		Type:      eventType,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// LoggingPublisher logs each event at debug level before delegating to Next.
type LoggingPublisher struct {
	Next Publisher
	Log  *zap.Logger
}

func (p LoggingPublisher) Publish(ctx context.Context, e Event) error {
	p.Log.Debug("publishing event", zap.String("type", e.Type), zap.Int64("id", e.ID))
	return p.Next.Publish(ctx, e)
}

func (p LoggingPublisher) Close() error {
	return p.Next.Close()
}
