// Package decode turns raw asset bytes into render-ready artifacts.
//
// The cache engine depends only on the Raster and Vector interfaces; the
// default implementations here cover standard bitmap formats and SVG markup.
// Decoded artifacts are never persisted — the store caches bytes, and bytes
// are re-decoded on demand.
package decode

import (
	"github.com/artbyte/assetcache/internal/models"
)

// Raster decodes encoded bitmap bytes into a drawable artifact.
type Raster interface {
	// Decode returns the decoded bitmap, or *apperrors.DecodeError on
	// malformed bytes.
	Decode(data []byte) (*models.RasterArtifact, error)
}

// Vector decodes vector markup into a drawable scene. Rendering parameters
// feed the decode step: distinct parameters produce distinct drawables.
type Vector interface {
	// Decode returns the parsed scene, or *apperrors.DecodeError on
	// malformed markup.
	Decode(data []byte, params models.RenderParams) (*models.VectorArtifact, error)
}
