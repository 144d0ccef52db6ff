package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/odalvarez/bookshelf-api/internal/kv"
)

// KVStore implements kv.Store on a single Postgres table, for
// deployments without a KeyDB. Per-key atomicity comes from row-level
// operations; prefix scans use an index-friendly LIKE pattern.
type KVStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// Open connects to Postgres, runs pending migrations, and returns the
// store.
func Open(ctx context.Context, url string) (*KVStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", kv.ErrUnavailable, err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewKVStore(db), nil
}

// NewKVStore wraps an existing connection pool.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Set upserts the value under key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.builder.
		Insert("kv_entries").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: set %q: %v", kv.ErrUnavailable, key, err)
	}
	return nil
}

// Get returns the value stored under key, or kv.ErrKeyNotFound.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.builder.
		Select("value").
		From("kv_entries").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var value []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, fmt.Errorf("%w: get %q: %v", kv.ErrUnavailable, key, err)
	}
	return value, nil
}

// Delete removes key, reporting whether a row was removed.
func (s *KVStore) Delete(ctx context.Context, key string) (bool, error) {
	query, args, err := s.builder.
		Delete("kv_entries").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: delete %q: %v", kv.ErrUnavailable, key, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %q: rows affected: %w", key, err)
	}
	return affected > 0, nil
}

// ScanPrefix enumerates all rows whose key starts with prefix, in key
// order. The scan runs under the connection's default read-committed
// snapshot; concurrent writes may or may not be observed.
func (s *KVStore) ScanPrefix(ctx context.Context, prefix string, fn kv.ScanFunc) error {
	query, args, err := s.builder.
		Select("key", "value").
		From("kv_entries").
		Where(sq.Like{"key": escapeLikePattern(prefix) + "%"}).
		OrderBy("key").
		ToSql()
	if err != nil {
		return fmt.Errorf("build scan query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: scan %q: %v", kv.ErrUnavailable, prefix, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: scan %q: %v", kv.ErrUnavailable, prefix, err)
	}
	return nil
}

// Ping verifies connectivity.
func (s *KVStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", kv.ErrUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *KVStore) Close() error {
	return s.db.Close()
}

// escapeLikePattern escapes LIKE metacharacters so a key prefix is
// matched literally.
func escapeLikePattern(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(prefix)
}

var _ kv.Store = (*KVStore)(nil)
var _ kv.Pinger = (*KVStore)(nil)
