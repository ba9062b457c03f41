package blobstore

import (
	"context"
	"errors"

	"github.com/artbyte/assetcache/internal/apperrors"
)

// instrumentedStore wraps a Store and automatically records Prometheus
// metrics for hits, misses, evictions, and current entry count under the
// given group label. All metric tracking lives in the store layer so callers
// do not need to manage it.
type instrumentedStore struct {
	inner Store
	group string
}

// newInstrumentedStore wraps inner with metric instrumentation for the given
// group. A lazy entries collector is registered that queries inner.Stats at
// scrape time, which is correct for backends (e.g., Redis) where TTL expiry
// removes entries outside the application's control.
func newInstrumentedStore(inner Store, group string) *instrumentedStore {
	registerEntriesCollector(group, func() int {
		s, err := inner.Stats(context.Background())
		if err != nil {
			return 0
		}
		return s.Entries
	})
	return &instrumentedStore{inner: inner, group: group}
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.inner.Get(ctx, key)
	switch {
	case err == nil:
		HitsTotal.WithLabelValues(s.group).Inc()
	case errors.Is(err, &apperrors.ErrNotFound{}):
		MissesTotal.WithLabelValues(s.group).Inc()
	}
	return val, err
}

func (s *instrumentedStore) Put(ctx context.Context, key string, value []byte) error {
	return s.inner.Put(ctx, key, value)
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

func (s *instrumentedStore) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}

func (s *instrumentedStore) Stats(ctx context.Context) (Stats, error) {
	return s.inner.Stats(ctx)
}

// Close unregisters the entries collector and closes the underlying store.
func (s *instrumentedStore) Close() error {
	unregisterEntriesCollector(s.group)
	return s.inner.Close()
}
