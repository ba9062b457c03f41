package blobstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artbyte/assetcache/internal/apperrors"
)

func newTestDiskStore(t *testing.T, maxEntries int, ttl time.Duration) Store {
	t.Helper()
	s, err := New("disk", ProviderConfig{
		MaxEntries: maxEntries,
		TTL:        ttl,
		Dir:        t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New disk store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDiskStore_GetPut(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t, 10, time.Hour)

	if _, err := s.Get(ctx, "icons/home.png"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected ErrNotFound for absent key, got %v", err)
	}

	payload := bytes.Repeat([]byte("pixels"), 100)
	if err := s.Put(ctx, "icons/home.png", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "icons/home.png")
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("Stored bytes do not round-trip")
	}
}

func TestDiskStore_Replace(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t, 10, time.Hour)

	_ = s.Put(ctx, "k", []byte("old"))
	if err := s.Put(ctx, "k", []byte("new")); err != nil {
		t.Fatalf("Replacing Put: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("Expected replaced value, got %q", got)
	}

	stats, _ := s.Stats(ctx)
	if stats.Entries != 1 {
		t.Fatalf("Replace should not grow the store, got %d entries", stats.Entries)
	}
}

func TestDiskStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New("disk", ProviderConfig{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Put(ctx, "k", []byte("persisted")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := New("disk", ProviderConfig{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "persisted" {
		t.Fatalf("Expected persisted value, got %q", got)
	}
}

func TestDiskStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t, 2, time.Hour)

	evictOrder := []string{"a", "b", "c"}
	for _, key := range evictOrder {
		if err := s.Put(ctx, key, []byte(key)); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
		// Distinct last-access timestamps so eviction order is stable.
		time.Sleep(5 * time.Millisecond)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 2 {
		t.Fatalf("Expected 2 entries after eviction, got %d", stats.Entries)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected oldest key to be evicted, got %v", err)
	}
	if _, err := s.Get(ctx, "c"); err != nil {
		t.Fatalf("Newest key should survive eviction: %v", err)
	}
}

func TestDiskStore_GetRefreshesLRUOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t, 2, time.Hour)

	_ = s.Put(ctx, "a", []byte("1"))
	time.Sleep(5 * time.Millisecond)
	_ = s.Put(ctx, "b", []byte("2"))
	time.Sleep(5 * time.Millisecond)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	_ = s.Put(ctx, "c", []byte("3"))

	if _, err := s.Get(ctx, "b"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected untouched key to be evicted, got %v", err)
	}
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatalf("Touched key should survive: %v", err)
	}
}

func TestDiskStore_Staleness(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t, 10, 30*time.Millisecond)

	_ = s.Put(ctx, "k", []byte("v"))
	time.Sleep(60 * time.Millisecond)

	// Physically present but past the threshold: treated as absent.
	if _, err := s.Get(ctx, "k"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected stale entry to be NotFound, got %v", err)
	}

	// Lazy expiry also removed the entry.
	stats, _ := s.Stats(ctx)
	if stats.Entries != 0 {
		t.Fatalf("Expected stale entry to be dropped, got %d entries", stats.Entries)
	}
}

func TestDiskStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t, 10, time.Hour)

	for _, key := range []string{"a", "b", "c", "d", "e"} {
		_ = s.Put(ctx, key, []byte(key))
	}

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, "absent"); err != nil {
		t.Fatalf("Removing an absent key should not error: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 0 {
		t.Fatalf("Expected 0 entries after Clear, got %d", stats.Entries)
	}
}

func TestDiskStore_StatsSize(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t, 10, time.Hour)

	_ = s.Put(ctx, "a", bytes.Repeat([]byte("x"), 4096))

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 {
		t.Fatalf("Expected 1 entry, got %d", stats.Entries)
	}
	if stats.SizeBytes <= 0 {
		t.Fatalf("Expected a positive on-disk size, got %d", stats.SizeBytes)
	}
}

func TestDiskStore_OrphanedIndexRow(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New("disk", ProviderConfig{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	_ = s.Put(ctx, "k", []byte("v"))

	// Delete the blob behind the index's back.
	blobs, err := os.ReadDir(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range blobs {
		if err := os.Remove(filepath.Join(dir, "blobs", e.Name())); err != nil {
			t.Fatalf("Remove blob: %v", err)
		}
	}

	// The orphaned row reads as a miss and is cleaned up.
	if _, err := s.Get(ctx, "k"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("Expected orphaned entry to be NotFound, got %v", err)
	}
	stats, _ := s.Stats(ctx)
	if stats.Entries != 0 {
		t.Fatalf("Expected orphaned row to be dropped, got %d entries", stats.Entries)
	}
}
