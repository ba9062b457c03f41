// Package blobstore provides the persistent byte-blob stores backing the
// asset caches. Stores are keyed by string, enforce a maximum entry count
// with least-recently-used eviction, and treat entries older than the
// configured TTL as absent on read (lazy expiry, no background sweep).
package blobstore

import (
	"context"
)

// EvictCallback is called when an entry is evicted from a store.
// Not all providers can supply the evicted value (e.g. Redis evicts
// server-side); value may be nil.
type EvictCallback func(key string, value []byte)

// Logger receives error reports from store operations that cannot surface an
// error to the caller (eviction callbacks, background cleanup). A nil Logger
// drops the reports.
type Logger interface {
	Error(msg string, err error)
}

// Stats describes the current contents of a store. SizeBytes is best-effort:
// providers that cannot compute it cheaply report an approximation or zero
// rather than failing.
type Stats struct {
	Entries   int
	SizeBytes int64
}

// Store is the persistent blob store contract the cache engine depends on.
// Implementations must be safe for concurrent use; a concurrent reader sees
// either the pre-write or post-write state of a key, never a partial entry.
type Store interface {
	// Get retrieves the bytes stored under key. It returns
	// *apperrors.ErrNotFound when the key is absent or the entry is older
	// than the staleness threshold, and *apperrors.StoreIOError on I/O
	// failure.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put inserts or replaces the bytes stored under key and runs the
	// eviction check, removing least-recently-used entries while the store
	// is over its maximum entry count.
	Put(ctx context.Context, key string, value []byte) error

	// Remove deletes the entry for key. Removing an absent key is not an
	// error.
	Remove(ctx context.Context, key string) error

	// Clear deletes every entry in the store.
	Clear(ctx context.Context) error

	// Stats reports the current entry count and approximate total size.
	Stats(ctx context.Context) (Stats, error)

	// Close releases any resources held by the store (file handles, network
	// connections). For in-memory stores this is a no-op.
	Close() error
}
