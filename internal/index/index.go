// Package index presents the flat key-value namespace as a logical,
// queryable book collection. The store has no query language, so every
// listing is a full prefix scan followed by an in-memory decode and sort.
// Every call costs O(n) over the namespace.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/odalvarez/bookshelf-api/internal/domain"
	"github.com/odalvarez/bookshelf-api/internal/kv"
)

// KeyPrefix is the process-wide constant under which all book documents
// are stored. The same prefix drives writes and the scan pattern.
const KeyPrefix = "book:"

// BookIndex maps domain books onto the key-value store.
type BookIndex struct {
	store  kv.Store
	logger *slog.Logger
}

// NewBookIndex creates a BookIndex over the given store.
func NewBookIndex(store kv.Store, logger *slog.Logger) *BookIndex {
	return &BookIndex{
		store:  store,
		logger: logger.With("component", "book_index"),
	}
}

// Key derives the storage key for a book ID.
func Key(id uuid.UUID) string {
	return KeyPrefix + id.String()
}

// Save serializes the book and writes it under its derived key.
// Subsequent scans include the new value.
func (i *BookIndex) Save(ctx context.Context, book *domain.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encode book %s: %w", book.ID, err)
	}

	if err := i.store.Set(ctx, Key(book.ID), raw); err != nil {
		return fmt.Errorf("save book %s: %w", book.ID, err)
	}

	return nil
}

// Get performs a point lookup. Absence is not an error: a nil book and
// nil error means the ID is unknown.
func (i *BookIndex) Get(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	raw, err := i.store.Get(ctx, Key(id))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}

	var book domain.Book
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, fmt.Errorf("decode book %s: %w", id, err)
	}

	return &book, nil
}

// Delete removes the book, reporting whether anything was removed.
func (i *BookIndex) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	removed, err := i.store.Delete(ctx, Key(id))
	if err != nil {
		return false, fmt.Errorf("delete book %s: %w", id, err)
	}
	return removed, nil
}

// ScanAll returns every decodable book in the namespace, sorted by title
// case-insensitively. Values that fail to decode are treated as
// corruption: logged and skipped, never fatal to the listing.
func (i *BookIndex) ScanAll(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	err := i.store.ScanPrefix(ctx, KeyPrefix, func(key string, value []byte) error {
		var book domain.Book
		if err := json.Unmarshal(value, &book); err != nil {
			i.logger.Warn("skipping corrupt book record",
				"key", key,
				"error", err)
			return nil
		}
		books = append(books, &book)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan books: %w", err)
	}

	sort.SliceStable(books, func(a, b int) bool {
		return books[a].NormalizedTitle() < books[b].NormalizedTitle()
	})

	return books, nil
}

// FindBy filters the full scan by a case-insensitive substring match on
// one field. An empty substring returns the full scan.
func (i *BookIndex) FindBy(ctx context.Context, field domain.SearchField, substring string) ([]*domain.Book, error) {
	books, err := i.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(substring))
	if needle == "" {
		return books, nil
	}

	matched := books[:0:0]
	for _, book := range books {
		if strings.Contains(strings.ToLower(field.Value(book)), needle) {
			matched = append(matched, book)
		}
	}

	return matched, nil
}
