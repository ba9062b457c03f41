package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/artbyte/assetcache/internal/apperrors"
	"github.com/artbyte/assetcache/internal/blobstore"
	"github.com/artbyte/assetcache/internal/cachekey"
	"github.com/artbyte/assetcache/internal/decode"
	"github.com/artbyte/assetcache/internal/flight"
	"github.com/artbyte/assetcache/internal/models"
	"github.com/artbyte/assetcache/internal/source"
)

// RasterCache loads decoded bitmaps, caching their encoded bytes in a blob
// store. Artifacts themselves are never retained: repeated loads of the same
// key re-decode from cached bytes, keeping the engine's footprint flat.
type RasterCache struct {
	core
	decoder decode.Raster
	flights flight.Group[*models.RasterArtifact]
}

// NewRasterCache creates a raster engine over the given store and origin.
// A nil decoder selects the default image decoder.
func NewRasterCache(store blobstore.Store, src source.Loader, decoder decode.Raster, logger zerolog.Logger) *RasterCache {
	if decoder == nil {
		decoder = decode.NewImageRaster()
	}
	return &RasterCache{
		core: core{
			store:  store,
			source: src,
			logger: logger.With().Str("cache", "raster").Logger(),
		},
		decoder: decoder,
	}
}

// Load returns the decoded bitmap for assetID. Concurrent calls for the same
// key share a single fetch and decode. Any failure is wrapped as a LoadError
// carrying the cause.
func (r *RasterCache) Load(ctx context.Context, assetID string, opts ...LoadOption) (*models.RasterArtifact, error) {
	o := applyOptions(opts)
	key := o.key
	if key == "" {
		key = cachekey.Raster(assetID)
	}

	artifact, _, err := r.flights.Do(ctx, key, func() (*models.RasterArtifact, error) {
		return loadBytes(context.WithoutCancel(ctx), &r.core, key, assetID, r.decoder.Decode)
	})
	if err != nil {
		return nil, apperrors.NewLoadError(assetID, key, err)
	}
	return artifact, nil
}
