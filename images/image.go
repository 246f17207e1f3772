// Package images - Image definition for processing utilities.
package images

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned by Decode for formats it cannot read.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image represents an encoded image with a format, data, width, and height.
// Width and Height are filled in by Decode.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// Decode decodes the image data into an *image.RGBA with its origin at (0, 0).
//
// Returns:
// - The decoded image.
// - An error if the data is empty, the format is unsupported or decoding fails.
//
// @example
// img := Image{Format: FormatJPEG, Data: raw}
// rgba, err := img.Decode()
func (i *Image) Decode() (*image.RGBA, error) {
	if len(i.Data) == 0 {
		return nil, errors.New("empty image data")
	}

	var (
		decoded image.Image
		err     error
	)
	r := bytes.NewReader(i.Data)
	switch i.Format {
	case FormatJPEG:
		decoded, err = jpeg.Decode(r)
	case FormatPNG:
		decoded, err = png.Decode(r)
	case FormatWebP:
		decoded, err = webp.Decode(r)
	case FormatBMP:
		decoded, err = bmp.Decode(r)
	case FormatTIFF:
		decoded, err = tiff.Decode(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", i.Format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s image", i.Format)
	}

	b := decoded.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), decoded, b.Min, draw.Src)

	i.Width, i.Height = b.Dx(), b.Dy()
	return dst, nil
}
