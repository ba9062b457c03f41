package decode

import (
	"bytes"
	"image"

	// Register the standard bitmap formats with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/artbyte/assetcache/internal/apperrors"
	"github.com/artbyte/assetcache/internal/models"
)

// ImageRaster decodes PNG, JPEG and GIF bytes using the standard image
// registry. Additional formats can be registered by importing their decoder
// packages for side effects.
type ImageRaster struct{}

// NewImageRaster creates the default raster decoder.
func NewImageRaster() *ImageRaster {
	return &ImageRaster{}
}

// Decode implements Raster.
func (d *ImageRaster) Decode(data []byte) (*models.RasterArtifact, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDecodeError("raster", err)
	}
	bounds := img.Bounds()
	return &models.RasterArtifact{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Image:  img,
	}, nil
}
