// Package engine orchestrates asset loading: derive a cache key, consult the
// blob store, fall back to the source on a miss, persist the fetched bytes,
// decode, and return the artifact. Concurrent loads for the same key are
// collapsed into a single fetch-and-decode by the flight group.
//
// Engines are constructed explicitly and passed to consumers; there is no
// ambient shared instance. Each engine owns its store: one raster engine and
// one vector engine per process is the expected shape.
package engine

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/artbyte/assetcache/internal/apperrors"
	"github.com/artbyte/assetcache/internal/blobstore"
	"github.com/artbyte/assetcache/internal/source"
)

// LoadOption adjusts a single load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	key string
}

// WithKey replaces the derived cache key for the store lookup. The override
// renames the cache slot only: on a miss the fetch still uses the real asset
// identifier.
func WithKey(key string) LoadOption {
	return func(o *loadOptions) {
		o.key = key
	}
}

func applyOptions(opts []LoadOption) loadOptions {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// core is the kind-independent part of an engine: store, origin, logging.
type core struct {
	store  blobstore.Store
	source source.Loader
	logger zerolog.Logger
}

// getOrFetch returns the bytes for key, reading the store first and falling
// back to a source fetch exactly once. Fetched bytes are persisted before
// returning so later requests (including after a restart) hit the store.
// fromStore reports whether the bytes came from the persistent layer.
//
// Store read failures other than not-found are treated as a miss: the store
// is a cache, and a broken read should not mask a reachable origin. Store
// write failures surface.
func (c *core) getOrFetch(ctx context.Context, key, assetID string) (data []byte, fromStore bool, err error) {
	data, err = c.store.Get(ctx, key)
	if err == nil {
		c.logger.Debug().Str("key", key).Int("size", len(data)).Msg("Store hit")
		return data, true, nil
	}
	if !errors.Is(err, &apperrors.ErrNotFound{}) {
		c.logger.Warn().Err(err).Str("key", key).Msg("Store read failed, treating as miss")
	}

	data, err = c.source.Fetch(ctx, assetID)
	if err != nil {
		return nil, false, err
	}
	c.logger.Debug().Str("key", key).Str("asset_id", assetID).Int("size", len(data)).Msg("Fetched from source")

	if err := c.store.Put(ctx, key, data); err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// refetch is the auto-repair path: a stored entry decoded badly, so the entry
// is dropped and the origin is consulted once more. The caller decodes the
// result; a second decode failure is final.
func (c *core) refetch(ctx context.Context, key, assetID string, cause error) ([]byte, error) {
	c.logger.Warn().Err(cause).Str("key", key).Str("asset_id", assetID).
		Msg("Stored entry failed to decode, refetching from source")

	if err := c.store.Remove(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Removing corrupt entry failed")
	}
	data, err := c.source.Fetch(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// loadBytes runs the full load algorithm: store lookup with source fallback,
// then decode via decodeFn. When bytes that came from the store fail to
// decode, one repair round (drop entry, fetch, persist, decode) is attempted.
// Decode failure on fresh source bytes is final.
func loadBytes[T any](ctx context.Context, c *core, key, assetID string, decodeFn func([]byte) (T, error)) (T, error) {
	var zero T

	data, fromStore, err := c.getOrFetch(ctx, key, assetID)
	if err != nil {
		return zero, err
	}

	artifact, err := decodeFn(data)
	if err == nil {
		return artifact, nil
	}
	if !fromStore || !errors.Is(err, &apperrors.DecodeError{}) {
		return zero, err
	}

	data, rerr := c.refetch(ctx, key, assetID, err)
	if rerr != nil {
		return zero, rerr
	}
	return decodeFn(data)
}

// Remove deletes the entry for key from this engine's store. An in-flight
// load for the same key is unaffected: it completes and re-inserts its
// result, which is an accepted race.
func (c *core) Remove(ctx context.Context, key string) error {
	return c.store.Remove(ctx, key)
}

// RemoveAll clears this engine's store. Keys for parameterized assets have no
// efficient prefix removal in the store contract, so removal is kind-scoped
// and total.
func (c *core) RemoveAll(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Stats reports the store's entry count and approximate size.
func (c *core) Stats(ctx context.Context) (blobstore.Stats, error) {
	return c.store.Stats(ctx)
}

// Close releases the engine's store resources.
func (c *core) Close() error {
	return c.store.Close()
}
