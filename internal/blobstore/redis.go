package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artbyte/assetcache/internal/apperrors"
)

const (
	// defaultKeyPrefix namespaces all store keys in Redis to avoid collisions.
	defaultKeyPrefix = "assetcache:"
)

func init() {
	Register("redis", newRedisStore)
}

// redisStore implements the Store interface using Redis/Valkey with
// application-level LRU semantics.
//
// Requires Redis 7.4+ or Valkey 8+ for per-field hash TTL (HPEXPIRE command).
// Using an older version will cause Put operations to store values that never
// expire automatically.
//
// Data is stored in 2 Redis keys per namespace (regardless of the number of
// store entries):
//
//   - {prefix}{ns}:data — a Hash that stores all blobs (field = cache key,
//     value = bytes). Per-field TTL is set at insertion via HPEXPIRE, so
//     staleness is enforced by Redis from insertion time: the field simply
//     disappears when the threshold passes.
//   - {prefix}{ns}:lru  — a Sorted Set that tracks LRU ordering
//     (member = cache key, score = last-access µs timestamp).
//
// Lua scripts ensure that Get (touch) and Put (write + evict) are each
// executed atomically, which gives readers the pre-write or post-write state
// and never a partial entry. Stale LRU members whose hash field has expired
// are lazily cleaned during eviction.
//
// Eviction rule: least-recently-used by last-access score, removed until the
// entry count is back under MaxEntries.
type redisStore struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int
	onEvict    EvictCallback
	logger     Logger
	dataKey    string // hash key, e.g. "assetcache:raster:data"
	lruKey     string // sorted set key, e.g. "assetcache:raster:lru"
}

// getAndTouch atomically retrieves a value from the hash and refreshes
// the LRU score when the entry exists.
//
// KEYS[1] = data hash, KEYS[2] = LRU sorted set
// ARGV[1] = current µs timestamp, ARGV[2] = member (cache key)
//
// Returns the value on hit, or nil on miss (including expired fields).
var getAndTouch = redis.NewScript(`
local val = redis.call('HGET', KEYS[1], ARGV[2])
if val then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
end
return val
`)

// putAndEvict atomically stores a value in the hash, sets per-field TTL via
// HPEXPIRE, updates LRU tracking, and evicts the least-recently-used entries
// when the store exceeds maxEntries. Stale sorted-set members whose hash
// field has already expired are silently cleaned up during eviction.
//
// KEYS[1] = data hash, KEYS[2] = LRU sorted set
// ARGV[1] = value, ARGV[2] = current µs timestamp, ARGV[3] = member,
// ARGV[4] = maxEntries, ARGV[5] = TTL in milliseconds
//
// Returns a list of evicted member names (may be empty).
var putAndEvict = redis.NewScript(`
local member     = ARGV[3]
local maxEntries = tonumber(ARGV[4])
local ttlMs      = tonumber(ARGV[5])

-- Store value and set per-field TTL
redis.call('HSET', KEYS[1], member, ARGV[1])
if ttlMs > 0 then
    redis.call('HPEXPIRE', KEYS[1], ttlMs, 'FIELDS', 1, member)
end

-- Update LRU score
redis.call('ZADD', KEYS[2], ARGV[2], member)

-- Evict least-recently-used entries if over capacity.
-- If the hash field was already expired by Redis, HDEL is a harmless no-op
-- and we still clean the stale sorted-set member.
local size = redis.call('ZCARD', KEYS[2])
local evicted = {}
while size > maxEntries do
    local oldest = redis.call('ZPOPMIN', KEYS[2], 1)
    if #oldest == 0 then break end
    local oldMember = oldest[1]
    redis.call('HDEL', KEYS[1], oldMember)
    table.insert(evicted, oldMember)
    size = size - 1
end

return evicted
`)

func newRedisStore(cfg ProviderConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Verify connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := defaultKeyPrefix
	if cfg.Namespace != "" {
		prefix += cfg.Namespace + ":"
	}
	return &redisStore{
		client:     client,
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		onEvict:    cfg.OnEvict,
		logger:     cfg.Logger,
		dataKey:    prefix + "data",
		lruKey:     prefix + "lru",
	}, nil
}

func (r *redisStore) keys() []string {
	return []string{r.dataKey, r.lruKey}
}

func (r *redisStore) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	now := strconv.FormatInt(time.Now().UnixMicro(), 10)
	result, err := getAndTouch.Run(ctx, r.client, r.keys(), now, key).Text()
	if err != nil {
		// redis.Nil means the field doesn't exist (or its TTL passed) —
		// a normal miss.
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NewNotFoundError(key)
		}
		return nil, apperrors.NewStoreIOError("get", key, err)
	}
	return []byte(result), nil
}

func (r *redisStore) Put(ctx context.Context, key string, value []byte) error {
	now := strconv.FormatInt(time.Now().UnixMicro(), 10)
	maxEntries := strconv.Itoa(r.maxEntries)
	ttlMs := strconv.FormatInt(r.ttl.Milliseconds(), 10)

	evicted, err := putAndEvict.Run(ctx, r.client, r.keys(),
		value, now, key, maxEntries, ttlMs,
	).StringSlice()
	if err != nil {
		return apperrors.NewStoreIOError("put", key, err)
	}

	if r.onEvict != nil {
		// Value is nil because retrieving evicted values from Redis would
		// require additional roundtrips. Callers should only rely on the
		// key for bookkeeping.
		for _, evictedKey := range evicted {
			r.onEvict(evictedKey, nil)
		}
	}
	return nil
}

func (r *redisStore) Remove(ctx context.Context, key string) error {
	pipe := r.client.TxPipeline()
	pipe.HDel(ctx, r.dataKey, key)
	pipe.ZRem(ctx, r.lruKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.NewStoreIOError("remove", key, err)
	}
	return nil
}

func (r *redisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.dataKey, r.lruKey).Err(); err != nil {
		return apperrors.NewStoreIOError("clear", "", err)
	}
	return nil
}

// Stats reports HLEN as the entry count. SizeBytes is the MEMORY USAGE of the
// data hash — an approximation that includes Redis overhead — and falls back
// to 0 when the server cannot report it. Per the error-handling policy, size
// computation is best-effort and never fails the call.
func (r *redisStore) Stats(ctx context.Context) (Stats, error) {
	n, err := r.client.HLen(ctx, r.dataKey).Result()
	if err != nil {
		return Stats{}, apperrors.NewStoreIOError("stats", "", err)
	}

	size, err := r.client.MemoryUsage(ctx, r.dataKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logError("redis store: MEMORY USAGE failed", err)
		}
		size = 0
	}

	return Stats{Entries: int(n), SizeBytes: size}, nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
