package domain

import "strings"

// SearchField identifies which book field a substring search matches
// against. It is a closed enumeration; free-form field names coming from
// the outside are funneled through ParseSearchField.
type SearchField string

// Allowed search fields
const (
	FieldTitle  SearchField = "title"
	FieldAuthor SearchField = "author"
	FieldGenre  SearchField = "genre"
)

// ParseSearchField maps a user-supplied field name to a SearchField.
// Unknown names fall back to FieldTitle rather than erroring, preserving
// the lenient behavior of the original search form. Callers that want
// strict validation can compare the input against String() afterwards.
func ParseSearchField(name string) SearchField {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "title":
		return FieldTitle
	case "author":
		return FieldAuthor
	case "genre":
		return FieldGenre
	default:
		return FieldTitle
	}
}

// String returns the field name.
func (f SearchField) String() string {
	return string(f)
}

// Value extracts the field's value from a book.
func (f SearchField) Value(b *Book) string {
	switch f {
	case FieldAuthor:
		return b.Author
	case FieldGenre:
		return b.Genre
	default:
		return b.Title
	}
}
