// Package service implements the catalog use cases on top of the book
// index: create, update, delete, list and search, plus the business rules
// the index itself deliberately does not know about (the case-insensitive
// duplicate-title check).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/odalvarez/bookshelf-api/internal/domain"
	"github.com/odalvarez/bookshelf-api/internal/events"
)

// Common service errors
var (
	// ErrDuplicateTitle is the business-rule rejection for a create or a
	// title-changing update colliding with an existing title
	// (case-insensitive). It is never retried.
	ErrDuplicateTitle = errors.New("a book with this title already exists")

	// ErrBookNotFound is returned for operations on unknown book IDs
	// where absence matters (update).
	ErrBookNotFound = errors.New("book not found")
)

// BookIndex is the index capability the service consumes.
type BookIndex interface {
	Save(ctx context.Context, book *domain.Book) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ScanAll(ctx context.Context) ([]*domain.Book, error)
	FindBy(ctx context.Context, field domain.SearchField, substring string) ([]*domain.Book, error)
}

// BookService orchestrates catalog mutations and publishes creation
// events. Store failures and business-rule rejections propagate to the
// caller; notification delivery never does.
type BookService struct {
	index   BookIndex
	emitter events.Emitter
	logger  *slog.Logger
}

// NewBookService creates a BookService.
func NewBookService(index BookIndex, emitter events.Emitter, logger *slog.Logger) *BookService {
	return &BookService{
		index:   index,
		emitter: emitter,
		logger:  logger.With("component", "book_service"),
	}
}

// CreateBook validates and persists a new book, then emits a
// book-created event. The event emission is fire-and-forget: a failing
// handler is logged but the created book is still returned, since the
// notification is not transactional with the write.
func (s *BookService) CreateBook(ctx context.Context, title, author, genre string, status domain.BookStatus) (*domain.Book, error) {
	book, err := domain.NewBook(title, author, genre, status)
	if err != nil {
		return nil, err
	}

	taken, err := s.titleTaken(ctx, book.NormalizedTitle(), uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateTitle
	}

	if err := s.index.Save(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info("book created", "book_id", book.ID, "title", book.Title)
	s.emitBookCreated(ctx, book)

	return book, nil
}

// UpdateBook replaces all fields of an existing book. The duplicate-title
// rule is re-checked only when the normalized title actually changes.
func (s *BookService) UpdateBook(ctx context.Context, id uuid.UUID, title, author, genre string, status domain.BookStatus) (*domain.Book, error) {
	current, err := s.index.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}

	updated := *current
	updated.Title = strings.TrimSpace(title)
	updated.Author = strings.TrimSpace(author)
	updated.Genre = strings.TrimSpace(genre)
	updated.Status = status
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if updated.NormalizedTitle() != current.NormalizedTitle() {
		taken, err := s.titleTaken(ctx, updated.NormalizedTitle(), id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateTitle
		}
	}

	updated.Touch()

	if err := s.index.Save(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("book updated", "book_id", id, "title", updated.Title)
	return &updated, nil
}

// DeleteBook removes a book. Deleting an unknown ID is a no-op returning
// false, never an error.
func (s *BookService) DeleteBook(ctx context.Context, id uuid.UUID) (bool, error) {
	removed, err := s.index.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info("book deleted", "book_id", id)
	}
	return removed, nil
}

// GetBook returns the book or nil when the ID is unknown.
func (s *BookService) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.index.Get(ctx, id)
}

// ListBooks returns all books sorted by title.
func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.index.ScanAll(ctx)
}

// SearchBooks filters books by a case-insensitive substring on one
// field. Unknown field names search the title (lenient default,
// see domain.ParseSearchField).
func (s *BookService) SearchBooks(ctx context.Context, field, substring string) ([]*domain.Book, error) {
	return s.index.FindBy(ctx, domain.ParseSearchField(field), substring)
}

// titleTaken scans the namespace for another book with the given
// normalized title, skipping excludeID. The full scan is the documented
// trade-off for a store without a secondary index.
func (s *BookService) titleTaken(ctx context.Context, normalizedTitle string, excludeID uuid.UUID) (bool, error) {
	books, err := s.index.ScanAll(ctx)
	if err != nil {
		return false, err
	}

	for _, book := range books {
		if book.ID != excludeID && book.NormalizedTitle() == normalizedTitle {
			return true, nil
		}
	}
	return false, nil
}

// emitBookCreated publishes the creation event. Handler failures are
// logged and absorbed; the created book is already persisted.
func (s *BookService) emitBookCreated(ctx context.Context, book *domain.Book) {
	event, err := events.NewBookCreatedEvent(book)
	if err != nil {
		s.logger.Error("failed to build book-created event",
			"book_id", book.ID,
			"error", err)
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("book-created event handler failed",
			"book_id", book.ID,
			"event_id", event.ID,
			"error", err)
	}
}
