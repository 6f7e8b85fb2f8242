// Package sse implements Server-Sent Events for live feed and catalog updates.
package sse

import (
	"time"

	"github.com/readnestapp/readnest-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventActivityCreated represents a new activity entry.
	// Delivered to the actor and to clients following the actor.
	EventActivityCreated EventType = "activity.created"

	// EventBookCreated represents a book creation event. Owner only.
	EventBookCreated EventType = "book.created"
	// EventBookUpdated represents a book update event. Owner only.
	EventBookUpdated EventType = "book.updated"
	// EventBookDeleted represents a book deletion event. Owner only.
	EventBookDeleted EventType = "book.deleted"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// Filtering fields for multi-user delivery. Not sent to clients.
	// UserID restricts delivery to one user. ActorID widens delivery to
	// the actor plus anyone following them (feed fan-out).
	UserID  string `json:"-"`
	ActorID string `json:"-"`
}

// ActivityEventData is the data payload for activity events.
type ActivityEventData struct {
	Activity *domain.Activity `json:"activity"`
}

// BookEventData is the data payload for book create/update events.
type BookEventData struct {
	Book *domain.Book `json:"book"`
}

// BookDeletedEventData is the data payload for book delete events.
type BookDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	BookID    string    `json:"book_id"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewActivityEvent creates an activity.created event routed to the actor
// and their followers.
func NewActivityEvent(activity *domain.Activity) Event {
	return Event{
		Type:      EventActivityCreated,
		Data:      ActivityEventData{Activity: activity},
		Timestamp: time.Now(),
		ActorID:   activity.UserID,
	}
}

// NewBookCreatedEvent creates a book.created event for the owner.
func NewBookCreatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookCreated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
		UserID:    book.UserID,
	}
}

// NewBookUpdatedEvent creates a book.updated event for the owner.
func NewBookUpdatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookUpdated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
		UserID:    book.UserID,
	}
}

// NewBookDeletedEvent creates a book.deleted event for the owner.
func NewBookDeletedEvent(book *domain.Book) Event {
	return Event{
		Type: EventBookDeleted,
		Data: BookDeletedEventData{
			BookID:    book.ID,
			DeletedAt: time.Now(),
		},
		Timestamp: time.Now(),
		UserID:    book.UserID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
