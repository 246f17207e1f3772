// Package images - colour planes, smoothing, decoding and rectangle helpers
// feeding the graph segmenter.
package images

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// ErrInputShape is returned when the planes of an image disagree in size or
// the image has no pixels.
var ErrInputShape = errors.New("invalid input shape")

// Planes holds the three colour channels of an image as separate row-major
// float32 planes. Index i of every plane is pixel (i%Width, i/Width).
type Planes struct {
	// Width is the number of columns.
	Width int `json:"width" yaml:"width"`
	// Height is the number of rows.
	Height int `json:"height" yaml:"height"`
	// R, G and B are the channel values, nominally in [0, 255].
	R []float32 `json:"-" yaml:"-"`
	G []float32 `json:"-" yaml:"-"`
	B []float32 `json:"-" yaml:"-"`
}

// NewPlanes allocates zeroed planes for a width x height image.
//
// Arguments:
// - width: Number of columns.
// - height: Number of rows.
//
// Returns:
// - The allocated planes, or ErrInputShape if either dimension is not positive.
func NewPlanes(width, height int) (*Planes, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInputShape, "dimensions %dx%d", width, height)
	}
	n := width * height
	return &Planes{
		Width:  width,
		Height: height,
		R:      make([]float32, n),
		G:      make([]float32, n),
		B:      make([]float32, n),
	}, nil
}

// Len returns the number of pixels.
func (p *Planes) Len() int {
	return p.Width * p.Height
}

// Index returns the row-major pixel index of (x, y).
func (p *Planes) Index(x, y int) int {
	return y*p.Width + x
}

// Validate checks that the planes describe a non-empty image and that all
// three channels hold exactly Width*Height values.
func (p *Planes) Validate() error {
	if p == nil {
		return errors.Wrap(ErrInputShape, "planes are nil")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Wrapf(ErrInputShape, "dimensions %dx%d", p.Width, p.Height)
	}
	n := p.Len()
	if len(p.R) != n || len(p.G) != n || len(p.B) != n {
		return errors.Wrapf(ErrInputShape, "plane lengths r=%d g=%d b=%d, want %d",
			len(p.R), len(p.G), len(p.B), n)
	}
	return nil
}

// Set stores the colour of pixel (x, y).
func (p *Planes) Set(x, y int, r, g, b float32) {
	i := p.Index(x, y)
	p.R[i], p.G[i], p.B[i] = r, g, b
}

// Diff returns the Euclidean RGB distance between pixels a and b.
//
// Arguments:
// - a: First pixel index.
// - b: Second pixel index.
//
// Returns:
// - sqrt(dr^2 + dg^2 + db^2) over the plane values.
//
// @example
// w := planes.Diff(planes.Index(0, 0), planes.Index(1, 0))
func (p *Planes) Diff(a, b int) float32 {
	dr := p.R[a] - p.R[b]
	dg := p.G[a] - p.G[b]
	db := p.B[a] - p.B[b]
	return math32.Sqrt(dr*dr + dg*dg + db*db)
}

// PlanesFromImage splits an image into 8-bit scaled RGB planes.
// Alpha is ignored; the image origin is moved to (0, 0).
//
// Arguments:
// - img: Any decoded image.
//
// Returns:
// - The planes, or ErrInputShape for an empty image.
//
// @example
// planes, err := PlanesFromImage(decoded)
func PlanesFromImage(img image.Image) (*Planes, error) {
	bounds := img.Bounds()
	p, err := NewPlanes(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	// Fast path for the layout every decoder in this package produces.
	if rgba, ok := img.(*image.RGBA); ok {
		Parallel(p.Height, func(partStart, partEnd int) {
			for y := partStart; y < partEnd; y++ {
				off := rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
				for x := 0; x < p.Width; x++ {
					px := rgba.Pix[off+4*x : off+4*x+3 : off+4*x+3]
					p.Set(x, y, float32(px[0]), float32(px[1]), float32(px[2]))
				}
			}
		})
		return p, nil
	}

	Parallel(p.Height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < p.Width; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				p.Set(x, y, float32(r>>8), float32(g>>8), float32(b>>8))
			}
		}
	})
	return p, nil
}
