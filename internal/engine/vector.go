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

// VectorCache loads parsed vector scenes, caching the raw markup bytes in a
// blob store. Rendering parameters are part of the cache key because they
// feed the decode step: the same markup tinted differently is a different
// drawable. The stored bytes are shared — only the key (and the decode)
// differ per parameter set.
type VectorCache struct {
	core
	decoder decode.Vector
	flights flight.Group[*models.VectorArtifact]
}

// NewVectorCache creates a vector engine over the given store and origin.
// A nil decoder selects the default SVG decoder.
func NewVectorCache(store blobstore.Store, src source.Loader, decoder decode.Vector, logger zerolog.Logger) *VectorCache {
	if decoder == nil {
		decoder = decode.NewSVGVector()
	}
	return &VectorCache{
		core: core{
			store:  store,
			source: src,
			logger: logger.With().Str("cache", "vector").Logger(),
		},
		decoder: decoder,
	}
}

// Load returns the parsed scene for assetID decoded with the given rendering
// parameters. Concurrent calls for the same key share a single fetch and
// decode. Any failure is wrapped as a LoadError carrying the cause.
func (v *VectorCache) Load(ctx context.Context, assetID string, params models.RenderParams, opts ...LoadOption) (*models.VectorArtifact, error) {
	o := applyOptions(opts)
	key := o.key
	if key == "" {
		key = cachekey.Vector(assetID, params.ColorFilter, params.Width, params.Height)
	}

	artifact, _, err := v.flights.Do(ctx, key, func() (*models.VectorArtifact, error) {
		return loadBytes(context.WithoutCancel(ctx), &v.core, key, assetID, func(data []byte) (*models.VectorArtifact, error) {
			return v.decoder.Decode(data, params)
		})
	})
	if err != nil {
		return nil, apperrors.NewLoadError(assetID, key, err)
	}
	return artifact, nil
}
