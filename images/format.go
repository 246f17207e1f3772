package images

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
	// FormatTIFF is the TIFF image format.
	FormatTIFF ImageFormat = "tiff"
)

// FormatFromPath guesses the format from a file extension.
// The second result is false for unknown extensions.
func FormatFromPath(path string) (ImageFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, true
	case ".png":
		return FormatPNG, true
	case ".webp":
		return FormatWebP, true
	case ".bmp":
		return FormatBMP, true
	case ".tif", ".tiff":
		return FormatTIFF, true
	}
	return "", false
}
