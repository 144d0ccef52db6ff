package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odalvarez/bookshelf-api/internal/domain"
	"github.com/odalvarez/bookshelf-api/internal/events"
	"github.com/odalvarez/bookshelf-api/internal/index"
	"github.com/odalvarez/bookshelf-api/internal/kv"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// recordingEmitter captures emitted events and can simulate handler failure.
type recordingEmitter struct {
	events []*events.Event
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.events = append(e.events, event)
	return e.err
}

func setupService(t *testing.T) (*BookService, *recordingEmitter) {
	t.Helper()
	logger := setupTestLogger()
	emitter := &recordingEmitter{}
	idx := index.NewBookIndex(kv.NewMemoryStore(), logger)
	return NewBookService(idx, emitter, logger), emitter
}

func TestCreateBookEmitsEvent(t *testing.T) {
	ctx := context.Background()
	svc, emitter := setupService(t)

	book, err := svc.CreateBook(ctx, "Dune", "Herbert", "SciFi", domain.StatusPending)
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.NotEqual(t, uuid.Nil, book.ID)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.TypeBookCreated, emitter.events[0].Type)

	var payload events.BookCreatedPayload
	require.NoError(t, emitter.events[0].UnmarshalPayload(&payload))
	assert.Equal(t, book.ID, payload.Book.ID)
}

func TestCreateBookRejectsDuplicateTitle(t *testing.T) {
	ctx := context.Background()
	svc, emitter := setupService(t)

	_, err := svc.CreateBook(ctx, "Dune", "Herbert", "SciFi", domain.StatusPending)
	require.NoError(t, err)

	// Case-insensitive collision
	_, err = svc.CreateBook(ctx, "dUNE", "Other", "Other", domain.StatusRead)
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	// Only the first create emitted an event
	assert.Len(t, emitter.events, 1)
}

func TestCreateBookValidation(t *testing.T) {
	svc, emitter := setupService(t)

	_, err := svc.CreateBook(context.Background(), "", "Herbert", "SciFi", domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)

	_, err = svc.CreateBook(context.Background(), "Dune", "Herbert", "SciFi", "reading")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	assert.Empty(t, emitter.events)
}

func TestCreateBookSucceedsDespiteHandlerFailure(t *testing.T) {
	ctx := context.Background()
	logger := setupTestLogger()
	emitter := &recordingEmitter{err: errors.New("queue unreachable")}
	idx := index.NewBookIndex(kv.NewMemoryStore(), logger)
	svc := NewBookService(idx, emitter, logger)

	// Notification is best-effort, not transactional with the write
	book, err := svc.CreateBook(ctx, "Dune", "Herbert", "SciFi", domain.StatusPending)
	require.NoError(t, err)

	stored, err := svc.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestUpdateBookReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	svc, emitter := setupService(t)

	book, err := svc.CreateBook(ctx, "Dune", "Herbert", "SciFi", domain.StatusPending)
	require.NoError(t, err)

	updated, err := svc.UpdateBook(ctx, book.ID, "Dune Messiah", "Frank Herbert", "SciFi", domain.StatusRead)
	require.NoError(t, err)
	assert.Equal(t, book.ID, updated.ID)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, "Frank Herbert", updated.Author)
	assert.Equal(t, domain.StatusRead, updated.Status)

	// Updates do not emit creation events
	assert.Len(t, emitter.events, 1)
}

func TestUpdateBookDuplicateTitleOnlyWhenTitleChanges(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.CreateBook(ctx, "Dune", "Herbert", "SciFi", domain.StatusPending)
	require.NoError(t, err)
	hobbit, err := svc.CreateBook(ctx, "Hobbit", "Tolkien", "Fantasy", domain.StatusRead)
	require.NoError(t, err)

	// Same title, different fields: no duplicate check failure
	_, err = svc.UpdateBook(ctx, hobbit.ID, "Hobbit", "Tolkien", "Fantasy", domain.StatusUnread)
	require.NoError(t, err)

	// Renaming onto another book's title is rejected
	_, err = svc.UpdateBook(ctx, hobbit.ID, "DUNE", "Tolkien", "Fantasy", domain.StatusUnread)
	assert.ErrorIs(t, err, ErrDuplicateTitle)
}

func TestUpdateBookUnknownID(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.UpdateBook(context.Background(), uuid.New(), "T", "A", "G", domain.StatusRead)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteBookUnknownIDIsNoOp(t *testing.T) {
	svc, _ := setupService(t)

	removed, err := svc.DeleteBook(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSearchBooksUnknownFieldDefaultsToTitle(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.CreateBook(ctx, "Dune", "Herbert", "SciFi", domain.StatusPending)
	require.NoError(t, err)

	found, err := svc.SearchBooks(ctx, "publisher", "dun")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Dune", found[0].Title)
}

func TestCreateBookPropagatesStoreFailure(t *testing.T) {
	ctx := context.Background()
	logger := setupTestLogger()
	idx := index.NewBookIndex(unavailableStore{}, logger)
	svc := NewBookService(idx, &recordingEmitter{}, logger)

	_, err := svc.CreateBook(ctx, "Dune", "Herbert", "SciFi", domain.StatusPending)
	assert.ErrorIs(t, err, kv.ErrUnavailable)
}

// unavailableStore fails every operation with a connectivity error.
type unavailableStore struct{}

func (unavailableStore) Set(context.Context, string, []byte) error {
	return kv.ErrUnavailable
}

func (unavailableStore) Get(context.Context, string) ([]byte, error) {
	return nil, kv.ErrUnavailable
}

func (unavailableStore) Delete(context.Context, string) (bool, error) {
	return false, kv.ErrUnavailable
}

func (unavailableStore) ScanPrefix(context.Context, string, kv.ScanFunc) error {
	return kv.ErrUnavailable
}
