package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianMask(t *testing.T) {
	mask := GaussianMask(0.5)
	require.Len(t, mask, 3)

	// Full symmetric kernel sums to one.
	sum := mask[0]
	for _, v := range mask[1:] {
		sum += 2 * v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	for i := 1; i < len(mask); i++ {
		assert.Less(t, mask[i], mask[i-1], "mask must decrease away from the centre")
	}

	// Tiny sigma collapses to an identity filter.
	tiny := GaussianMask(0)
	assert.Len(t, tiny, 2)
	assert.InDelta(t, 1.0, tiny[0], 1e-9)
}

func TestSmooth_UniformImageUnchanged(t *testing.T) {
	p, err := NewPlanes(7, 5)
	require.NoError(t, err)
	for i := 0; i < p.Len(); i++ {
		p.R[i], p.G[i], p.B[i] = 40, 80, 120
	}

	out, err := Smooth(p, 0.8)
	require.NoError(t, err)
	for i := 0; i < out.Len(); i++ {
		assert.InDelta(t, 40, out.R[i], 1e-3)
		assert.InDelta(t, 80, out.G[i], 1e-3)
		assert.InDelta(t, 120, out.B[i], 1e-3)
	}
}

func TestSmooth_SpreadsImpulse(t *testing.T) {
	p, err := NewPlanes(5, 5)
	require.NoError(t, err)
	centre := p.Index(2, 2)
	p.R[centre] = 255

	out, err := Smooth(p, 1.0)
	require.NoError(t, err)

	assert.Less(t, out.R[centre], float32(255))
	assert.Greater(t, out.R[p.Index(1, 2)], float32(0))
	assert.Greater(t, out.R[p.Index(2, 1)], float32(0))
	assert.Equal(t, out.R[p.Index(1, 2)], out.R[p.Index(3, 2)], "blur must be symmetric")
	assert.InDelta(t, out.R[p.Index(2, 1)], out.R[p.Index(1, 2)], 1e-4)

	// Source planes are left untouched.
	assert.Equal(t, float32(255), p.R[centre])
}

func TestSmooth_RejectsBadPlanes(t *testing.T) {
	_, err := Smooth(&Planes{Width: 2, Height: 2}, 0.5)
	assert.ErrorIs(t, err, ErrInputShape)
}

func TestParallel_CoversRangeOnce(t *testing.T) {
	for _, n := range []int{0, 1, 3, 1000} {
		hits := make([]int, n)
		Parallel(n, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			assert.Equal(t, 1, h, "index %d of %d", i, n)
		}
	}
}
