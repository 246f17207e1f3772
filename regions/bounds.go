// Package regions tracks the tight bounding box of every labelled region of a
// segmented image.
package regions

import (
	"slices"
	"strconv"
	"sync"

	"github.com/nvr-ai/go-seg/images"
	"github.com/pkg/errors"
)

var (
	// ErrDegenerateRegion is returned when a region is queried before any of
	// its pixels has been checked.
	ErrDegenerateRegion = errors.New("region has no pixels")

	// ErrUnknownRegion is returned for labels the tracker has never seen.
	ErrUnknownRegion = errors.New("unknown region")

	// ErrInvalidPixel is returned for pixel indices outside the image.
	ErrInvalidPixel = errors.New("pixel index out of range")
)

// Bounds is the inclusive pixel extent of one region.
type Bounds struct {
	MinX, MinY int
	MaxX, MaxY int
	seen       bool
}

// Empty reports whether no pixel has been added.
func (b Bounds) Empty() bool {
	return !b.seen
}

// Rect returns the box spanned by the extreme pixel coordinates,
// (MinX, MinY)-(MaxX, MaxY). An empty Bounds yields the zero Rect.
func (b Bounds) Rect() images.Rect {
	if !b.seen {
		return images.Rect{}
	}
	return images.Rect{X1: b.MinX, Y1: b.MinY, X2: b.MaxX, Y2: b.MaxY}
}

// Encode returns the bounds in scalar pixel-index form,
// [[left, right], [top, bottom]], for an image of the given width. Only the
// decoded coordinates are meaningful: left%width is MinX, right%width is MaxX,
// top/width is MinY and bottom/width is MaxY.
func (b Bounds) Encode(width int) [2][2]int {
	return [2][2]int{
		{b.MinY*width + b.MinX, b.MaxY*width + b.MaxX},
		{b.MinY*width + b.MinX, b.MaxY*width + b.MaxX},
	}
}

// DecodeRect turns a [[left, right], [top, bottom]] pixel-index encoding back
// into a Rect: x from index%width, y from index/width.
func DecodeRect(enc [2][2]int, width int) images.Rect {
	return images.Rect{
		X1: enc[0][0] % width,
		Y1: enc[1][0] / width,
		X2: enc[0][1] % width,
		Y2: enc[1][1] / width,
	}
}

func (b *Bounds) add(x, y int) {
	if !b.seen {
		*b = Bounds{MinX: x, MinY: y, MaxX: x, MaxY: y, seen: true}
		return
	}
	b.MinX = min(b.MinX, x)
	b.MinY = min(b.MinY, y)
	b.MaxX = max(b.MaxX, x)
	b.MaxY = max(b.MaxY, y)
}

func (b *Bounds) merge(o Bounds) {
	if !o.seen {
		return
	}
	b.add(o.MinX, o.MinY)
	b.add(o.MaxX, o.MaxY)
}

// Tracker keeps one Bounds per region label. Pixels may be checked in any
// order and any number of times; the bounds are always tight over the pixels
// checked so far.
type Tracker struct {
	width  int
	height int
	order  []string
	bounds map[string]*Bounds
}

// NewTracker creates a tracker for a width x height image. Labels passed here
// are registered up front in the given order; other labels are registered
// when first checked.
func NewTracker(width, height int, labels ...string) (*Tracker, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(images.ErrInputShape, "dimensions %dx%d", width, height)
	}
	t := &Tracker{
		width:  width,
		height: height,
		order:  make([]string, 0, len(labels)),
		bounds: make(map[string]*Bounds, len(labels)),
	}
	for _, l := range labels {
		t.register(l)
	}
	return t, nil
}

// FromLabels builds a tracker from a per-pixel label array, such as
// segment.Result.Labels or an externally produced watershed labelling.
// Regions are keyed by the decimal label and registered in ascending label
// order. Rows are scanned concurrently; bounds merging is order independent so
// the result is the same as a sequential scan.
func FromLabels(width, height int, labels []int) (*Tracker, error) {
	if width <= 0 || height <= 0 || len(labels) != width*height {
		return nil, errors.Wrapf(images.ErrInputShape, "%d labels for %dx%d image", len(labels), width, height)
	}

	distinct := slices.Clone(labels)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	names := make([]string, len(distinct))
	for i, l := range distinct {
		names[i] = strconv.Itoa(l)
	}
	t, err := NewTracker(width, height, names...)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	images.Parallel(height, func(partStart, partEnd int) {
		local := make(map[int]*Bounds)
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < width; x++ {
				l := labels[y*width+x]
				b, ok := local[l]
				if !ok {
					b = &Bounds{}
					local[l] = b
				}
				b.add(x, y)
			}
		}
		mu.Lock()
		defer mu.Unlock()
		for l, b := range local {
			t.bounds[strconv.Itoa(l)].merge(*b)
		}
	})

	return t, nil
}

// Width returns the image width.
func (t *Tracker) Width() int { return t.width }

// Height returns the image height.
func (t *Tracker) Height() int { return t.height }

// Len returns the number of registered regions.
func (t *Tracker) Len() int { return len(t.order) }

// Labels returns the registered labels in registration order.
func (t *Tracker) Labels() []string {
	return slices.Clone(t.order)
}

// CheckPixel extends the bounds of label to include pixel, a row-major index
// into the image.
func (t *Tracker) CheckPixel(label string, pixel int) error {
	if pixel < 0 || pixel >= t.width*t.height {
		return errors.Wrapf(ErrInvalidPixel, "%d not in [0, %d)", pixel, t.width*t.height)
	}
	t.register(label).add(pixel%t.width, pixel/t.width)
	return nil
}

// Bounds returns the current bounds of label.
func (t *Tracker) Bounds(label string) (Bounds, error) {
	b, ok := t.bounds[label]
	if !ok {
		return Bounds{}, errors.Wrapf(ErrUnknownRegion, "%q", label)
	}
	if b.Empty() {
		return Bounds{}, errors.Wrapf(ErrDegenerateRegion, "%q", label)
	}
	return *b, nil
}

// Encoded returns the bounds of label in pixel-index form (see Bounds.Encode).
// A region without pixels encodes as [[width-1, 0], [width*height-1, 0]] and
// is reported with ErrDegenerateRegion.
func (t *Tracker) Encoded(label string) ([2][2]int, error) {
	b, err := t.Bounds(label)
	if errors.Is(err, ErrDegenerateRegion) {
		return [2][2]int{{t.width - 1, 0}, {t.width*t.height - 1, 0}}, err
	}
	if err != nil {
		return [2][2]int{}, err
	}
	return b.Encode(t.width), nil
}

// Rect returns the decoded box of label. Regions without pixels yield the
// zero Rect together with ErrDegenerateRegion.
func (t *Tracker) Rect(label string) (images.Rect, error) {
	b, err := t.Bounds(label)
	if err != nil {
		return images.Rect{}, err
	}
	return b.Rect(), nil
}

func (t *Tracker) register(label string) *Bounds {
	if b, ok := t.bounds[label]; ok {
		return b
	}
	b := &Bounds{}
	t.bounds[label] = b
	t.order = append(t.order, label)
	return b
}
