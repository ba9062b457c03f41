package apperrors

import "fmt"

// ErrNotFound represents a cache store miss: the key is absent or its entry
// has aged past the staleness threshold.
type ErrNotFound struct {
	Key string
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache entry %q not found", e.Key)
	}
	return "cache entry not found"
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound for the given cache key.
func NewNotFoundError(key string) *ErrNotFound {
	return &ErrNotFound{Key: key}
}

// ErrSourceNotFound is returned when an asset identifier cannot be resolved
// at the origin. Fatal to the request; the engine does not retry.
type ErrSourceNotFound struct {
	AssetID string
}

// Error implements the error interface.
func (e *ErrSourceNotFound) Error() string {
	return fmt.Sprintf("asset %q not found at source", e.AssetID)
}

// Is allows for error checking with errors.Is().
func (e *ErrSourceNotFound) Is(target error) bool {
	_, ok := target.(*ErrSourceNotFound)
	return ok
}

// NewSourceNotFoundError creates a new ErrSourceNotFound.
func NewSourceNotFoundError(assetID string) *ErrSourceNotFound {
	return &ErrSourceNotFound{AssetID: assetID}
}

// DecodeError is returned when raw bytes cannot be decoded into a drawable
// artifact (malformed raster data or vector markup).
type DecodeError struct {
	Kind string // "raster" or "vector"
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s asset: %v", e.Kind, e.Err)
}

// Is allows for error checking with errors.Is().
func (e *DecodeError) Is(target error) bool {
	_, ok := target.(*DecodeError)
	return ok
}

// Unwrap exposes the underlying decoder failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError for the given asset kind.
func NewDecodeError(kind string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Err: err}
}

// StoreIOError is returned when the persistent store fails to read or write.
// Reads that fail this way are treated as misses by the engine; writes surface.
type StoreIOError struct {
	Op  string // "get", "put", "remove", "clear", "stats"
	Key string
	Err error
}

// Error implements the error interface.
func (e *StoreIOError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s failed for key %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

// Is allows for error checking with errors.Is().
func (e *StoreIOError) Is(target error) bool {
	_, ok := target.(*StoreIOError)
	return ok
}

// Unwrap exposes the underlying store failure.
func (e *StoreIOError) Unwrap() error {
	return e.Err
}

// NewStoreIOError creates a new StoreIOError.
func NewStoreIOError(op, key string, err error) *StoreIOError {
	return &StoreIOError{Op: op, Key: key, Err: err}
}

// LoadError is the engine-level wrapper for any failure during a load:
// source fetch, store write, or decode. The original cause is reachable
// through errors.Is/errors.As.
type LoadError struct {
	AssetID string
	Key     string
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load asset %q (key %q): %v", e.AssetID, e.Key, e.Err)
}

// Is allows for error checking with errors.Is().
func (e *LoadError) Is(target error) bool {
	_, ok := target.(*LoadError)
	return ok
}

// Unwrap exposes the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps err as a LoadError for the given asset and cache key.
func NewLoadError(assetID, key string, err error) *LoadError {
	return &LoadError{AssetID: assetID, Key: key, Err: err}
}
