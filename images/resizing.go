package images

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// Fit downscales img so that neither side exceeds maxDimension, keeping the
// aspect ratio. Images already within bounds, and maxDimension <= 0, return
// the input unchanged.
//
// Segmentation cost grows with the pixel count, so large photographs are
// usually fitted before building the graph. Ground-truth rectangles must be
// scaled by the same factor; see Scale.
//
// Arguments:
//   - img: The image to fit.
//   - maxDimension: Largest allowed width or height.
//
// Returns:
//   - image.Image: The fitted image with its origin at (0, 0).
//   - float64: The applied scale factor (1 when unchanged).
func Fit(img image.Image, maxDimension int) (image.Image, float64) {
	b := img.Bounds()
	if maxDimension <= 0 || (b.Dx() <= maxDimension && b.Dy() <= maxDimension) {
		return img, 1
	}

	fitted := resize.Thumbnail(uint(maxDimension), uint(maxDimension), img, resize.Lanczos3)
	scale := float64(fitted.Bounds().Dx()) / float64(b.Dx())

	// resize may return images with a non-zero origin for sub-images.
	if fitted.Bounds().Min != (image.Point{}) {
		fb := fitted.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, fb.Dx(), fb.Dy()))
		draw.Draw(dst, dst.Bounds(), fitted, fb.Min, draw.Src)
		fitted = dst
	}

	return fitted, scale
}

// Scale multiplies every coordinate of r by factor, rounding to the nearest
// pixel.
func Scale(r Rect, factor float64) Rect {
	round := func(v int) int {
		return int(float64(v)*factor + 0.5)
	}
	return Rect{X1: round(r.X1), Y1: round(r.Y1), X2: round(r.X2), Y2: round(r.Y2)}
}
