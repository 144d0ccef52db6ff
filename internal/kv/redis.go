package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// scanBatchSize is the COUNT hint passed to SCAN and the MGET batch size.
const scanBatchSize = 200

// RedisStore implements Store on top of a Redis-protocol server
// (Redis, KeyDB, Valkey). Keys are scanned with SCAN MATCH <prefix>* and
// values fetched in MGET batches, so a scan never blocks the server.
type RedisStore struct {
	client redis.UniversalClient
}

// RedisOptions holds connection settings for NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects a RedisStore. The connection is lazy; use Ping
// to verify connectivity at startup.
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{client: client}
}

// NewRedisStoreFromClient wraps an existing client, used by tests.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Set writes value under key.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %q: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("%w: get %q: %v", ErrUnavailable, key, err)
	}
	return value, nil
}

// Delete removes key, reporting whether a value was removed.
func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: delete %q: %v", ErrUnavailable, key, err)
	}
	return removed > 0, nil
}

// ScanPrefix enumerates all keys matching <prefix>* and feeds each
// key/value pair to fn. Keys deleted between the SCAN and the MGET show
// up as nil values and are skipped.
func (s *RedisStore) ScanPrefix(ctx context.Context, prefix string, fn ScanFunc) error {
	var cursor uint64
	pattern := prefix + "*"

	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("%w: scan %q: %v", ErrUnavailable, pattern, err)
		}

		if len(keys) > 0 {
			values, err := s.client.MGet(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("%w: mget: %v", ErrUnavailable, err)
			}
			for i, raw := range values {
				if raw == nil {
					continue
				}
				str, ok := raw.(string)
				if !ok {
					continue
				}
				if err := fn(keys[i], []byte(str)); err != nil {
					return err
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping verifies connectivity to the server.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
var _ Pinger = (*RedisStore)(nil)
