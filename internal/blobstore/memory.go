package blobstore

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/artbyte/assetcache/internal/apperrors"
)

func init() {
	Register("memory", newMemoryStore)
}

// memoryStore wraps hashicorp/golang-lru/v2/expirable to implement the Store
// interface. Eviction rule: least-recently-used by access, enforced by the
// library; staleness is handled by the library's per-entry TTL.
//
// Contents do not survive a restart; the provider exists for tests and for
// deployments that only want session-scoped caching.
type memoryStore struct {
	inner *lru.LRU[string, []byte]
}

func newMemoryStore(cfg ProviderConfig) (Store, error) {
	var onEvict func(string, []byte)
	if cfg.OnEvict != nil {
		onEvict = func(key string, value []byte) {
			cfg.OnEvict(key, value)
		}
	}
	return &memoryStore{
		inner: lru.NewLRU[string, []byte](cfg.MaxEntries, onEvict, cfg.TTL),
	}, nil
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := m.inner.Get(key)
	if !ok {
		return nil, apperrors.NewNotFoundError(key)
	}
	return val, nil
}

func (m *memoryStore) Put(_ context.Context, key string, value []byte) error {
	m.inner.Add(key, value)
	return nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	m.inner.Remove(key)
	return nil
}

func (m *memoryStore) Clear(_ context.Context) error {
	m.inner.Purge()
	return nil
}

// Stats sums the byte length of live values. Peek avoids touching LRU order.
func (m *memoryStore) Stats(_ context.Context) (Stats, error) {
	var size int64
	for _, key := range m.inner.Keys() {
		if val, ok := m.inner.Peek(key); ok {
			size += int64(len(val))
		}
	}
	return Stats{Entries: m.inner.Len(), SizeBytes: size}, nil
}

func (m *memoryStore) Close() error {
	return nil
}
