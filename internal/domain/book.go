package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookStatus represents the reading state of a catalog entry.
type BookStatus string

// Possible book status values
const (
	StatusRead    BookStatus = "read"
	StatusUnread  BookStatus = "unread"
	StatusPending BookStatus = "pending"
)

// Common validation errors for Book
var (
	ErrEmptyBookID   = errors.New("book ID cannot be empty")
	ErrEmptyTitle    = errors.New("book title cannot be empty")
	ErrEmptyAuthor   = errors.New("book author cannot be empty")
	ErrEmptyGenre    = errors.New("book genre cannot be empty")
	ErrInvalidStatus = errors.New("invalid book status")
)

// Book represents a single catalog entry. Books are stored as opaque
// JSON values in the key-value store; last write wins, no versioning.
type Book struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Genre     string     `json:"genre"`
	Status    BookStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewBook creates a new Book with a generated ID and timestamps.
// Returns an error if validation fails.
func NewBook(title, author, genre string, status BookStatus) (*Book, error) {
	now := time.Now().UTC()
	book := &Book{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		Genre:     strings.TrimSpace(genre),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// Validate checks if the Book has valid data.
// Returns an error if any field fails validation.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookID
	}

	if b.Title == "" {
		return ErrEmptyTitle
	}

	if b.Author == "" {
		return ErrEmptyAuthor
	}

	if b.Genre == "" {
		return ErrEmptyGenre
	}

	if !isValidStatus(b.Status) {
		return ErrInvalidStatus
	}

	return nil
}

// Touch updates the UpdatedAt timestamp after a full-field replace.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// NormalizedTitle returns the lowercased title used for the
// case-insensitive duplicate check and for sorting.
func (b *Book) NormalizedTitle() string {
	return strings.ToLower(b.Title)
}

// isValidStatus checks if the given status is a valid BookStatus.
func isValidStatus(status BookStatus) bool {
	switch status {
	case StatusRead, StatusUnread, StatusPending:
		return true
	default:
		return false
	}
}
