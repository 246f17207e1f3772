package regions

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/nvr-ai/go-seg/images"
	"github.com/nvr-ai/go-seg/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_CheckPixelTightBounds(t *testing.T) {
	tr, err := NewTracker(10, 8)
	require.NoError(t, err)

	for _, p := range [][2]int{{4, 2}, {7, 5}, {1, 6}, {3, 1}} {
		require.NoError(t, tr.CheckPixel("a", p[1]*10+p[0]))
	}

	b, err := tr.Bounds("a")
	require.NoError(t, err)
	assert.Equal(t, 1, b.MinX)
	assert.Equal(t, 7, b.MaxX)
	assert.Equal(t, 1, b.MinY)
	assert.Equal(t, 6, b.MaxY)
	assert.Equal(t, images.Rect{X1: 1, Y1: 1, X2: 7, Y2: 6}, b.Rect())
}

func TestTracker_OrderIndependentAndIdempotent(t *testing.T) {
	const w, h = 17, 11
	pixels := make([]int, 0, 40)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 40; i++ {
		pixels = append(pixels, rng.Intn(w*h))
	}

	forward, err := NewTracker(w, h)
	require.NoError(t, err)
	for _, p := range pixels {
		require.NoError(t, forward.CheckPixel("r", p))
	}

	shuffled, err := NewTracker(w, h)
	require.NoError(t, err)
	for _, i := range rng.Perm(len(pixels)) {
		require.NoError(t, shuffled.CheckPixel("r", pixels[i]))
		require.NoError(t, shuffled.CheckPixel("r", pixels[i]))
	}

	fb, err := forward.Bounds("r")
	require.NoError(t, err)
	sb, err := shuffled.Bounds("r")
	require.NoError(t, err)
	assert.Equal(t, fb, sb)
}

func TestTracker_DegenerateAndUnknownRegions(t *testing.T) {
	tr, err := NewTracker(4, 3, "empty")
	require.NoError(t, err)
	assert.Equal(t, []string{"empty"}, tr.Labels())

	_, err = tr.Bounds("empty")
	assert.ErrorIs(t, err, ErrDegenerateRegion)

	enc, err := tr.Encoded("empty")
	assert.ErrorIs(t, err, ErrDegenerateRegion)
	assert.Equal(t, [2][2]int{{3, 0}, {11, 0}}, enc)

	// The initial encoding decodes to an inverted box that scores no overlap.
	inverted := DecodeRect(enc, 4)
	assert.Equal(t, images.Rect{X1: 3, Y1: 2, X2: 0, Y2: 0}, inverted)
	assert.Zero(t, images.Overlap(inverted, images.Rect{X1: 0, Y1: 0, X2: 4, Y2: 3}))

	_, err = tr.Rect("missing")
	assert.ErrorIs(t, err, ErrUnknownRegion)

	assert.ErrorIs(t, tr.CheckPixel("x", 12), ErrInvalidPixel)
	assert.ErrorIs(t, tr.CheckPixel("x", -1), ErrInvalidPixel)
	assert.Equal(t, 1, tr.Len(), "rejected pixels must not register labels")

	_, err = NewTracker(0, 3)
	assert.ErrorIs(t, err, images.ErrInputShape)
}

func TestBounds_EncodeDecodeRoundTrip(t *testing.T) {
	const w = 9
	b := Bounds{MinX: 2, MinY: 1, MaxX: 8, MaxY: 4, seen: true}
	assert.Equal(t, b.Rect(), DecodeRect(b.Encode(w), w))
}

func TestFromLabels_MatchesSequentialScan(t *testing.T) {
	const w, h = 64, 40
	labels := make([]int, w*h)
	rng := rand.New(rand.NewSource(11))
	for i := range labels {
		labels[i] = rng.Intn(12) * 7
	}

	tr, err := FromLabels(w, h, labels)
	require.NoError(t, err)

	seq, err := NewTracker(w, h)
	require.NoError(t, err)
	for i, l := range labels {
		require.NoError(t, seq.CheckPixel(strconv.Itoa(l), i))
	}

	require.Equal(t, seq.Len(), tr.Len())
	for _, label := range tr.Labels() {
		want, err := seq.Bounds(label)
		require.NoError(t, err)
		got, err := tr.Bounds(label)
		require.NoError(t, err)
		assert.Equal(t, want, got, "label %s", label)
	}

	// Labels are registered in ascending numeric order.
	assert.Equal(t, "0", tr.Labels()[0])
	assert.Equal(t, "7", tr.Labels()[1])
	assert.Equal(t, "14", tr.Labels()[2])
}

func TestFromLabels_SegmentedUniformImage(t *testing.T) {
	p, err := images.NewPlanes(2, 2)
	require.NoError(t, err)
	res, err := segment.SegmentPlanes(p, segment.Config{C: 1, MinSize: 1})
	require.NoError(t, err)

	tr, err := FromLabels(res.Width, res.Height, res.Labels)
	require.NoError(t, err)
	require.Equal(t, 1, tr.Len())

	rect, err := tr.Rect(tr.Labels()[0])
	require.NoError(t, err)
	assert.Equal(t, images.Rect{X1: 0, Y1: 0, X2: 1, Y2: 1}, rect)

	enc, err := tr.Encoded(tr.Labels()[0])
	require.NoError(t, err)
	assert.Equal(t, rect, DecodeRect(enc, 2))
}

func TestFromLabels_RejectsShapeMismatch(t *testing.T) {
	_, err := FromLabels(3, 3, make([]int, 8))
	assert.ErrorIs(t, err, images.ErrInputShape)
}
