// Package kv defines the key-value store capability consumed by the
// catalog. The application treats the store as a flat namespace of opaque
// byte values addressed by string keys; listing is done by prefix scan
// since the store has no native query language.
package kv

import (
	"context"
	"errors"
)

// Common errors returned by Store implementations.
var (
	// ErrKeyNotFound is returned by Get when the key does not exist.
	// Absence is a normal outcome and must never be conflated with
	// connectivity failures.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnavailable indicates a connectivity or timeout failure talking
	// to the store. Implementations wrap the underlying cause so callers
	// can match with errors.Is.
	ErrUnavailable = errors.New("store unavailable")
)

// ScanFunc is invoked once per key/value pair during a prefix scan.
// Returning an error stops the scan and propagates the error to the caller.
type ScanFunc func(key string, value []byte) error

// Store is the minimal key-value capability required by the catalog.
//
// Implementations must be safe for concurrent use. Per-key operations are
// atomic; there are no multi-key transactions. ScanPrefix is best-effort
// with respect to concurrent writes: a scan racing a write may or may not
// observe it.
type Store interface {
	// Set writes value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. It reports whether a value was actually removed;
	// deleting an absent key is a no-op, not an error.
	Delete(ctx context.Context, key string) (bool, error)

	// ScanPrefix calls fn for every key sharing the given prefix. The
	// enumeration is finite and not restartable mid-scan.
	ScanPrefix(ctx context.Context, prefix string, fn ScanFunc) error
}

// Pinger is implemented by stores that can report connectivity,
// used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}
