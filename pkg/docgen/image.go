package docgen

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/wxjw/Vanka/pkg/docgen/placement"
)

// ImageFormat is the format of a stamp image.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47}

// DetectImageFormat sniffs PNG and JPEG signatures.
func DetectImageFormat(data []byte) (ImageFormat, error) {
	switch {
	case len(data) >= 8 && bytes.HasPrefix(data, pngSignature):
		return ImagePNG, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return ImageJPEG, nil
	}
	return "", NewValidationError("stamp", "", "stamp image must be PNG or JPEG")
}

// imageSize returns the pixel dimensions of a PNG or JPEG image.
func imageSize(data []byte) (placement.Size, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return placement.Size{}, NewDocumentError("decode", "stamp", fmt.Errorf("cannot read image header: %w", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return placement.Size{}, NewValidationError("stamp", "", "stamp image has no pixels")
	}
	return placement.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}
