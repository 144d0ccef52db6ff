// Package events decouples the document mutation path from the
// notification pipeline. Services publish events through an emitter
// without knowing which handlers are registered; the notify dispatcher
// subscribes and turns creation events into mail jobs.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/odalvarez/bookshelf-api/internal/domain"
)

// Event type identifiers
const (
	TypeBookCreated = "book_created"
)

// Event is an application event with an opaque JSON payload.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type identifies the kind of event (e.g. TypeBookCreated)
	Type string `json:"type"`

	// Payload carries event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// BookCreatedPayload is the payload of a TypeBookCreated event.
type BookCreatedPayload struct {
	Book *domain.Book `json:"book"`
}

// NewBookCreatedEvent builds a TypeBookCreated event for the given book.
func NewBookCreatedEvent(book *domain.Book) (*Event, error) {
	payload, err := json.Marshal(BookCreatedPayload{Book: book})
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      TypeBookCreated,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Handler processes published events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// Emitter publishes events to registered handlers.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
