package models

// RenderParams are the rendering parameters that influence vector decoding.
// Distinct parameter values produce distinct drawable artifacts, so they are
// part of the cache key for vector assets. Raster assets take no parameters.
type RenderParams struct {
	// ColorFilter is a canonical descriptor of the tint applied at decode
	// time (e.g. "#ff0000@srcIn"). Empty means no filter.
	ColorFilter string

	// Width and Height are the target dimensions in pixels. Zero means the
	// asset's intrinsic size.
	Width  int
	Height int
}
