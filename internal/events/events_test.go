package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odalvarez/bookshelf-api/internal/domain"
)

func TestNewBookCreatedEvent(t *testing.T) {
	book, err := domain.NewBook("Dune", "Herbert", "SciFi", domain.StatusPending)
	require.NoError(t, err)

	event, err := NewBookCreatedEvent(book)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeBookCreated, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var payload BookCreatedPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	require.NotNil(t, payload.Book)
	assert.Equal(t, book.ID, payload.Book.ID)
	assert.Equal(t, "Dune", payload.Book.Title)
}

func TestUnmarshalPayloadInvalidTarget(t *testing.T) {
	event := &Event{Payload: []byte(`{"book":{"title":"Dune"}}`)}

	var wrong []int
	assert.Error(t, event.UnmarshalPayload(&wrong))
}
