// Package testutil provides shared stubs and fixtures for cache tests:
// counting collaborators to verify fetch/decode invocation counts, and
// minimal valid asset payloads.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"

	"github.com/artbyte/assetcache/internal/apperrors"
	"github.com/artbyte/assetcache/internal/decode"
	"github.com/artbyte/assetcache/internal/models"
)

// CountingLoader is a source.Loader stub serving from an in-memory map while
// counting Fetch calls. Unknown identifiers yield ErrSourceNotFound. An
// optional Gate channel makes Fetch block until the gate closes, which lets
// concurrency tests pile callers onto one in-flight load.
type CountingLoader struct {
	mu     sync.Mutex
	assets map[string][]byte
	calls  atomic.Int64

	// Gate, when non-nil, blocks every Fetch until closed.
	Gate chan struct{}

	// Err, when non-nil, is returned by every Fetch.
	Err error
}

// NewCountingLoader creates a loader serving the given assets.
func NewCountingLoader(assets map[string][]byte) *CountingLoader {
	if assets == nil {
		assets = make(map[string][]byte)
	}
	return &CountingLoader{assets: assets}
}

// Fetch implements source.Loader.
func (l *CountingLoader) Fetch(_ context.Context, assetID string) ([]byte, error) {
	l.calls.Add(1)
	if l.Gate != nil {
		<-l.Gate
	}
	if l.Err != nil {
		return nil, l.Err
	}
	l.mu.Lock()
	data, ok := l.assets[assetID]
	l.mu.Unlock()
	if !ok {
		return nil, apperrors.NewSourceNotFoundError(assetID)
	}
	return data, nil
}

// Calls returns the number of Fetch invocations so far.
func (l *CountingLoader) Calls() int {
	return int(l.calls.Load())
}

// Set replaces the bytes served for assetID.
func (l *CountingLoader) Set(assetID string, data []byte) {
	l.mu.Lock()
	l.assets[assetID] = data
	l.mu.Unlock()
}

// CountingRasterDecoder wraps a raster decoder and counts Decode calls.
type CountingRasterDecoder struct {
	Inner decode.Raster
	calls atomic.Int64
}

// Decode implements decode.Raster.
func (d *CountingRasterDecoder) Decode(data []byte) (*models.RasterArtifact, error) {
	d.calls.Add(1)
	return d.Inner.Decode(data)
}

// Calls returns the number of Decode invocations so far.
func (d *CountingRasterDecoder) Calls() int {
	return int(d.calls.Load())
}

// CountingVectorDecoder wraps a vector decoder and counts Decode calls.
type CountingVectorDecoder struct {
	Inner decode.Vector
	calls atomic.Int64
}

// Decode implements decode.Vector.
func (d *CountingVectorDecoder) Decode(data []byte, params models.RenderParams) (*models.VectorArtifact, error) {
	d.calls.Add(1)
	return d.Inner.Decode(data, params)
}

// Calls returns the number of Decode invocations so far.
func (d *CountingVectorDecoder) Calls() int {
	return int(d.calls.Load())
}

// PNG encodes a solid-color bitmap of the given size, a minimal valid raster
// payload.
func PNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err) // cannot fail for an in-memory RGBA image
	}
	return buf.Bytes()
}

// SVG is a minimal valid vector payload declaring a 24x24 size.
const SVG = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24">
  <g fill="none">
    <circle cx="12" cy="12" r="10" stroke="currentColor"/>
    <path d="M8 12h8"/>
  </g>
</svg>`
