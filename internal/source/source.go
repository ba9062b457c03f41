// Package source provides the raw byte origins assets are fetched from on a
// cache miss. The engine depends only on the Loader interface; transport
// concerns (retries, backoff) are out of scope and belong to the caller's
// http.Client or wrapper.
package source

import "context"

// Loader resolves an asset identifier to its raw encoded bytes.
type Loader interface {
	// Fetch returns the raw bytes for assetID, or
	// *apperrors.ErrSourceNotFound when the identifier is unresolvable at
	// the origin.
	Fetch(ctx context.Context, assetID string) ([]byte, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, assetID string) ([]byte, error)

// Fetch implements Loader.
func (f LoaderFunc) Fetch(ctx context.Context, assetID string) ([]byte, error) {
	return f(ctx, assetID)
}
