package models

import "image"

// RasterArtifact is a decoded bitmap ready for rendering. It lives in memory
// only and is never persisted; the store caches the raw encoded bytes.
type RasterArtifact struct {
	Width  int
	Height int
	Image  image.Image
}

// VectorArtifact is a parsed vector scene ready for rendering, along with the
// intrinsic size declared by the markup and the rendering parameters the
// scene was decoded with.
type VectorArtifact struct {
	IntrinsicWidth  float64
	IntrinsicHeight float64
	Scene           *Scene
	Params          RenderParams
}
