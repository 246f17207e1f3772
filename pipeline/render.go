package pipeline

import (
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/nvr-ai/go-seg/evaluation"
	"github.com/nvr-ai/go-seg/images"
)

var classColors = map[evaluation.Class]color.RGBA{
	evaluation.Matched:   {R: 0, G: 200, B: 0, A: 255},
	evaluation.Unmatched: {R: 220, G: 0, B: 0, A: 255},
}

// RegionColor returns a stable colour for a region root.
func RegionColor(root int) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.Itoa(root)))
	v := h.Sum32()
	return color.RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: 255}
}

// Colorize paints every pixel with the colour of its region.
//
// @example
// preview := res.Colorize()
// _ = png.Encode(f, preview)
func (r *Result) Colorize() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	colors := make(map[int]color.RGBA, r.Segmentation.NumSets)
	for root := range r.Segmentation.Sizes() {
		colors[root] = RegionColor(root)
	}

	images.Parallel(r.Height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < r.Width; x++ {
				dst.SetRGBA(x, y, colors[r.Segmentation.Labels[y*r.Width+x]])
			}
		}
	})
	return dst
}

// DrawBoxes outlines every region box on dst: green when the region matched
// a ground-truth object, red otherwise. Without a report every box is red.
// dst must be in segmented coordinates.
func (r *Result) DrawBoxes(dst draw.Image) {
	for _, label := range r.Tracker.Labels() {
		rect, err := r.Tracker.Rect(label)
		if err != nil {
			continue
		}
		class := evaluation.Unmatched
		if r.Report != nil {
			class = r.Report.Classes[label]
		}
		outline(dst, rect, classColors[class])
	}
}

// Annotated returns a copy of src with the region boxes drawn on it.
func (r *Result) Annotated(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	fitted, _ := images.Fit(src, max(r.Width, r.Height))
	draw.Draw(dst, dst.Bounds(), fitted, fitted.Bounds().Min, draw.Src)
	r.DrawBoxes(dst)
	return dst
}

func outline(dst draw.Image, rect images.Rect, c color.Color) {
	for x := rect.X1; x <= rect.X2; x++ {
		dst.Set(x, rect.Y1, c)
		dst.Set(x, rect.Y2, c)
	}
	for y := rect.Y1; y <= rect.Y2; y++ {
		dst.Set(rect.X1, y, c)
		dst.Set(rect.X2, y, c)
	}
}
