package blobstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/artbyte/assetcache/internal/apperrors"
)

func TestMemoryStore_GetPut(t *testing.T) {
	ctx := context.Background()
	s, err := New("memory", ProviderConfig{MaxEntries: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New memory store: %v", err)
	}
	defer s.Close()

	// Miss
	_, err = s.Get(ctx, "key1")
	if !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected ErrNotFound for absent key, got %v", err)
	}

	// Put + hit
	if err := s.Put(ctx, "key1", []byte("value1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	val, err := s.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	if string(val) != "value1" {
		t.Fatalf("Expected value1, got %s", string(val))
	}
}

func TestMemoryStore_Eviction(t *testing.T) {
	ctx := context.Background()
	s, err := New("memory", ProviderConfig{MaxEntries: 2, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	// Inserting maxEntries+1 distinct keys leaves maxEntries entries, with
	// the least-recently-used key gone.
	_ = s.Put(ctx, "a", []byte("1"))
	_ = s.Put(ctx, "b", []byte("2"))
	_ = s.Put(ctx, "c", []byte("3"))

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 2 {
		t.Fatalf("Expected 2 entries after eviction, got %d", stats.Entries)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected evicted key to be NotFound, got %v", err)
	}
}

func TestMemoryStore_Staleness(t *testing.T) {
	ctx := context.Background()
	s, err := New("memory", ProviderConfig{MaxEntries: 10, TTL: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	_ = s.Put(ctx, "k", []byte("v"))
	time.Sleep(60 * time.Millisecond)

	if _, err := s.Get(ctx, "k"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected stale entry to be NotFound, got %v", err)
	}
}

func TestMemoryStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s, err := New("memory", ProviderConfig{MaxEntries: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	_ = s.Put(ctx, "a", []byte("1"))
	_ = s.Put(ctx, "b", []byte("2"))

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, "absent"); err != nil {
		t.Fatalf("Removing an absent key should not error: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected removed key to be NotFound, got %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, _ := s.Stats(ctx)
	if stats.Entries != 0 {
		t.Fatalf("Expected 0 entries after Clear, got %d", stats.Entries)
	}
}

func TestMemoryStore_StatsSize(t *testing.T) {
	ctx := context.Background()
	s, err := New("memory", ProviderConfig{MaxEntries: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	_ = s.Put(ctx, "a", []byte("1234"))
	_ = s.Put(ctx, "b", []byte("56"))

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.SizeBytes != 6 {
		t.Fatalf("Expected 6 bytes, got %d", stats.SizeBytes)
	}
}
