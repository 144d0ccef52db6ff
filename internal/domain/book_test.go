package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook(t *testing.T) {
	book, err := NewBook("  Dune ", "Herbert", "SciFi", StatusPending)
	require.NoError(t, err)

	assert.NotZero(t, book.ID)
	assert.Equal(t, "Dune", book.Title, "title should be trimmed")
	assert.Equal(t, "Herbert", book.Author)
	assert.Equal(t, "SciFi", book.Genre)
	assert.Equal(t, StatusPending, book.Status)
	assert.False(t, book.CreatedAt.IsZero())
	assert.Equal(t, book.CreatedAt, book.UpdatedAt)
}

func TestNewBookValidation(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		author  string
		genre   string
		status  BookStatus
		wantErr error
	}{
		{"empty title", "", "a", "g", StatusRead, ErrEmptyTitle},
		{"whitespace title", "   ", "a", "g", StatusRead, ErrEmptyTitle},
		{"empty author", "t", "", "g", StatusRead, ErrEmptyAuthor},
		{"empty genre", "t", "a", "", StatusRead, ErrEmptyGenre},
		{"unknown status", "t", "a", "g", "reading", ErrInvalidStatus},
		{"empty status", "t", "a", "g", "", ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBook(tt.title, tt.author, tt.genre, tt.status)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBookStatuses(t *testing.T) {
	for _, status := range []BookStatus{StatusRead, StatusUnread, StatusPending} {
		_, err := NewBook("t", "a", "g", status)
		assert.NoError(t, err, "status %s", status)
	}
}

func TestNormalizedTitle(t *testing.T) {
	book, err := NewBook("The HOBBIT", "Tolkien", "Fantasy", StatusRead)
	require.NoError(t, err)
	assert.Equal(t, "the hobbit", book.NormalizedTitle())
}

func TestParseSearchField(t *testing.T) {
	tests := []struct {
		input string
		want  SearchField
	}{
		{"title", FieldTitle},
		{"Author", FieldAuthor},
		{" genre ", FieldGenre},
		// Unknown fields fall back to title rather than erroring
		{"publisher", FieldTitle},
		{"", FieldTitle},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSearchField(tt.input), "input %q", tt.input)
	}
}

func TestSearchFieldValue(t *testing.T) {
	book, err := NewBook("Dune", "Herbert", "SciFi", StatusPending)
	require.NoError(t, err)

	assert.Equal(t, "Dune", FieldTitle.Value(book))
	assert.Equal(t, "Herbert", FieldAuthor.Value(book))
	assert.Equal(t, "SciFi", FieldGenre.Value(book))
}
