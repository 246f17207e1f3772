package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlanes_RejectsEmptyDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-3, 4}} {
		_, err := NewPlanes(dims[0], dims[1])
		assert.True(t, errors.Is(err, ErrInputShape), "dims %v", dims)
	}
}

func TestPlanes_Validate(t *testing.T) {
	p, err := NewPlanes(3, 2)
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	p.G = p.G[:5]
	assert.True(t, errors.Is(p.Validate(), ErrInputShape))

	var nilPlanes *Planes
	assert.True(t, errors.Is(nilPlanes.Validate(), ErrInputShape))
}

func TestPlanes_Diff(t *testing.T) {
	p, err := NewPlanes(2, 1)
	require.NoError(t, err)
	p.Set(0, 0, 0, 0, 0)
	p.Set(1, 0, 3, 4, 12)

	assert.InDelta(t, 13.0, float64(p.Diff(0, 1)), 1e-6)
	assert.Equal(t, p.Diff(0, 1), p.Diff(1, 0))
	assert.Zero(t, p.Diff(1, 1))
}

func TestPlanesFromImage(t *testing.T) {
	// Non-zero origin must map to (0, 0).
	img := image.NewNRGBA(image.Rect(5, 5, 8, 7))
	img.Set(5, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(7, 6, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	p, err := PlanesFromImage(img)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Width)
	assert.Equal(t, 2, p.Height)

	first := p.Index(0, 0)
	last := p.Index(2, 1)
	assert.Equal(t, []float32{10, 20, 30}, []float32{p.R[first], p.G[first], p.B[first]})
	assert.Equal(t, []float32{200, 100, 50}, []float32{p.R[last], p.G[last], p.B[last]})

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	rgba.SetRGBA(1, 1, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	p, err = PlanesFromImage(rgba)
	require.NoError(t, err)
	assert.Equal(t, float32(3), p.B[p.Index(1, 1)])
}
