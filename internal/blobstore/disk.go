package blobstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/artbyte/assetcache/internal/apperrors"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	Register("disk", newDiskStore)
}

// diskStore persists blobs as zstd-compressed files in a directory, with a
// SQLite metadata index tracking key, file name, on-disk size, insertion time
// and last access time.
//
// Eviction rule: least-recently-used by last access time, removed until the
// entry count is back under MaxEntries. Staleness: entries older than TTL
// from insertion are treated as absent on read and deleted opportunistically.
//
// Writes go through a temp file plus rename, so a concurrent reader sees
// either the previous blob or the new one, never a partial file. The index
// uses a single-writer connection; mutating operations additionally hold a
// process-level mutex so the eviction check reads a consistent count.
type diskStore struct {
	dir        string
	maxEntries int
	ttl        time.Duration
	onEvict    EvictCallback
	logger     Logger

	write *sql.DB // single-writer connection
	read  *sql.DB // multi-reader pool

	enc *zstd.Encoder
	dec *zstd.Decoder

	mu sync.Mutex // guards Put/Remove/Clear against each other
}

func newDiskStore(cfg ProviderConfig) (Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("disk store: Dir is required")
	}
	blobDir := filepath.Join(cfg.Dir, "blobs")
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return nil, fmt.Errorf("disk store: create blob dir: %w", err)
	}

	write, read, err := openIndex(filepath.Join(cfg.Dir, "index.db"))
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		write.Close()
		read.Close()
		return nil, fmt.Errorf("disk store: create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		write.Close()
		read.Close()
		return nil, fmt.Errorf("disk store: create zstd decoder: %w", err)
	}

	return &diskStore{
		dir:        cfg.Dir,
		maxEntries: cfg.MaxEntries,
		ttl:        cfg.TTL,
		onEvict:    cfg.OnEvict,
		logger:     cfg.Logger,
		write:      write,
		read:       read,
		enc:        enc,
		dec:        dec,
	}, nil
}

// openIndex opens the SQLite metadata index with WAL enabled, a single-writer
// connection and a small reader pool, and applies the embedded migrations.
func openIndex(path string) (write, read *sql.DB, err error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	write, err = sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("disk store: open index: %w", err)
	}
	write.SetMaxOpenConns(1)

	read, err = sql.Open("sqlite", dsn)
	if err != nil {
		write.Close()
		return nil, nil, fmt.Errorf("disk store: open index reader: %w", err)
	}
	read.SetMaxOpenConns(max(4, runtime.NumCPU()))

	if err := runMigrations(write); err != nil {
		write.Close()
		read.Close()
		return nil, nil, fmt.Errorf("disk store: migrations: %w", err)
	}
	return write, read, nil
}

// runMigrations applies the embedded SQL migrations using goose.
// fs.Sub strips the "migrations/" prefix so goose sees files at the FS root.
func runMigrations(db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("sub fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	_, err = provider.Up(context.Background())
	return err
}

// blobPath derives the on-disk path for a key. The name is the SHA-256 of the
// key, so arbitrary key strings never escape the blob directory.
func (d *diskStore) blobPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(d.dir, "blobs", hex.EncodeToString(sum[:])+".zst")
}

func (d *diskStore) logError(msg string, err error) {
	if d.logger != nil {
		d.logger.Error(msg, err)
	}
}

func (d *diskStore) Get(ctx context.Context, key string) ([]byte, error) {
	var file string
	var createdAt int64
	row := d.read.QueryRowContext(ctx,
		`SELECT file, created_at FROM entries WHERE key = ?`, key)
	if err := row.Scan(&file, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(key)
		}
		return nil, apperrors.NewStoreIOError("get", key, err)
	}

	now := time.Now()
	if d.ttl > 0 && now.Sub(time.UnixMilli(createdAt)) > d.ttl {
		// Lazy expiry: drop the stale entry and report a miss.
		if err := d.Remove(ctx, key); err != nil {
			d.logError("disk store: removing stale entry failed", err)
		}
		return nil, apperrors.NewNotFoundError(key)
	}

	compressed, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Index row without a blob: clean it up and report a miss.
			if rmErr := d.Remove(ctx, key); rmErr != nil {
				d.logError("disk store: removing orphaned entry failed", rmErr)
			}
			return nil, apperrors.NewNotFoundError(key)
		}
		return nil, apperrors.NewStoreIOError("get", key, err)
	}

	value, err := d.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, apperrors.NewStoreIOError("get", key, err)
	}

	// Touch for LRU ordering. Best-effort: a failed touch only skews
	// eviction order, it does not invalidate the read.
	if _, err := d.write.ExecContext(ctx,
		`UPDATE entries SET last_access = ? WHERE key = ?`, now.UnixMilli(), key); err != nil {
		d.logError("disk store: touch failed", err)
	}

	return value, nil
}

func (d *diskStore) Put(ctx context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	compressed := d.enc.EncodeAll(value, nil)
	path := d.blobPath(key)

	// Temp file in the same directory so the rename is atomic.
	tmp := filepath.Join(filepath.Dir(path), "tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return apperrors.NewStoreIOError("put", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return apperrors.NewStoreIOError("put", key, err)
	}

	now := time.Now().UnixMilli()
	if _, err := d.write.ExecContext(ctx,
		`INSERT INTO entries (key, file, size, created_at, last_access)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   file = excluded.file, size = excluded.size,
		   created_at = excluded.created_at, last_access = excluded.last_access`,
		key, path, len(compressed), now, now); err != nil {
		return apperrors.NewStoreIOError("put", key, err)
	}

	return d.evictLocked(ctx)
}

// evictLocked removes least-recently-used entries while the store is over its
// maximum entry count. Caller holds d.mu.
func (d *diskStore) evictLocked(ctx context.Context) error {
	if d.maxEntries <= 0 {
		return nil
	}

	var count int
	if err := d.write.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		return apperrors.NewStoreIOError("put", "", err)
	}
	over := count - d.maxEntries
	if over <= 0 {
		return nil
	}

	rows, err := d.write.QueryContext(ctx,
		`SELECT key, file FROM entries ORDER BY last_access ASC LIMIT ?`, over)
	if err != nil {
		return apperrors.NewStoreIOError("put", "", err)
	}
	type victim struct{ key, file string }
	var victims []victim
	for rows.Next() {
		var v victim
		if err := rows.Scan(&v.key, &v.file); err != nil {
			rows.Close()
			return apperrors.NewStoreIOError("put", "", err)
		}
		victims = append(victims, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperrors.NewStoreIOError("put", "", err)
	}

	for _, v := range victims {
		if _, err := d.write.ExecContext(ctx,
			`DELETE FROM entries WHERE key = ?`, v.key); err != nil {
			return apperrors.NewStoreIOError("put", v.key, err)
		}
		if err := os.Remove(v.file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			d.logError("disk store: removing evicted blob failed", err)
		}
		if d.onEvict != nil {
			d.onEvict(v.key, nil)
		}
	}
	return nil
}

func (d *diskStore) Remove(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var file string
	err := d.write.QueryRowContext(ctx,
		`SELECT file FROM entries WHERE key = ?`, key).Scan(&file)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return apperrors.NewStoreIOError("remove", key, err)
	}

	if _, err := d.write.ExecContext(ctx,
		`DELETE FROM entries WHERE key = ?`, key); err != nil {
		return apperrors.NewStoreIOError("remove", key, err)
	}
	if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewStoreIOError("remove", key, err)
	}
	return nil
}

func (d *diskStore) Clear(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.write.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return apperrors.NewStoreIOError("clear", "", err)
	}

	blobDir := filepath.Join(d.dir, "blobs")
	if err := os.RemoveAll(blobDir); err != nil {
		return apperrors.NewStoreIOError("clear", "", err)
	}
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return apperrors.NewStoreIOError("clear", "", err)
	}
	return nil
}

// Stats reports the entry count and the total on-disk (compressed) size from
// the index.
func (d *diskStore) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := d.read.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0) FROM entries`).
		Scan(&s.Entries, &s.SizeBytes)
	if err != nil {
		return Stats{}, apperrors.NewStoreIOError("stats", "", err)
	}
	return s, nil
}

func (d *diskStore) Close() error {
	d.enc.Close()
	d.dec.Close()
	return errors.Join(d.write.Close(), d.read.Close())
}
