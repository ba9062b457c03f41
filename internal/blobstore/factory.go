package blobstore

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ProviderConfig holds the configuration needed to create a store instance.
type ProviderConfig struct {
	// MaxEntries is the maximum number of entries before least-recently-used
	// eviction kicks in.
	MaxEntries int

	// TTL is the staleness threshold: entries older than this from insertion
	// are treated as absent on read.
	TTL time.Duration

	// Dir is the blob directory for the disk provider.
	Dir string

	// OnEvict is called when an entry is evicted. Not all providers support
	// this.
	OnEvict EvictCallback

	// Logger receives error reports from store operations. If nil, errors
	// that cannot surface to a caller are silently ignored.
	Logger Logger

	// RedisAddress is the Redis/Valkey server address (e.g. "localhost:6379").
	RedisAddress string

	// RedisPassword is the password for the Redis/Valkey server.
	RedisPassword string

	// RedisDB is the Redis/Valkey database number.
	RedisDB int

	// Namespace isolates this store's keys from other stores sharing the
	// same backend (redis key prefix, disk index scope). Defaults to the
	// Group when empty.
	Namespace string

	// Group is an optional label value used to namespace Prometheus metrics
	// (assetcache_store_hits_total, assetcache_store_misses_total, etc.).
	// When non-empty the store is automatically wrapped with metric
	// instrumentation.
	Group string
}

// Provider is a constructor function that creates a Store from config.
type Provider func(cfg ProviderConfig) (Store, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register registers a store provider under the given name.
// It panics if the name is already registered or the provider is nil.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("blobstore: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("blobstore: provider %q already registered", name))
	}
	providers[name] = p
}

// New creates a new Store using the named provider and the given config.
// When cfg.Group is non-empty the resulting store is wrapped with metric
// instrumentation: hits, misses, and evictions are tracked with a "store"
// label equal to Group, and a lazy entries collector is registered that
// queries Stats at scrape time instead of maintaining an in-process counter.
func New(name string, cfg ProviderConfig) (Store, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("blobstore: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	if cfg.Namespace == "" {
		cfg.Namespace = cfg.Group
	}

	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	// Wrap OnEvict so the store layer counts evictions itself.
	original := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if original != nil {
			original(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}

	return newInstrumentedStore(inner, group), nil
}

// RegisteredProviders returns a sorted list of registered provider names.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
