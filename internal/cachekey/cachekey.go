// Package cachekey derives deterministic cache keys for assets.
//
// The same (assetID, params) tuple always yields the same key, and any change
// to an input that changes the decoded output yields a different key. Keys are
// kept human-readable: they double as store fields and index entries, where a
// recognizable identifier helps operability.
package cachekey

import (
	"strconv"
	"strings"
)

// Raster derives the cache key for a raster asset. A raster identifier maps
// to a single drawable, so the key is the identifier itself.
func Raster(assetID string) string {
	return assetID
}

// Vector derives the cache key for a vector asset. Color filter, width and
// height feed the decode step and produce distinct drawables, so they are
// encoded into the key in fixed field order.
func Vector(assetID string, colorFilter string, width, height int) string {
	var b strings.Builder
	b.Grow(len(assetID) + len(colorFilter) + 24)
	b.WriteString(assetID)
	b.WriteString("|cf=")
	b.WriteString(colorFilter)
	b.WriteString("|w=")
	b.WriteString(strconv.Itoa(width))
	b.WriteString("|h=")
	b.WriteString(strconv.Itoa(height))
	return b.String()
}
