// Package images - Image processing utilities
package images

import (
	"fmt"
	"image"
)

// Rect is a lightweight axis-aligned box in pixel coordinates.
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right corner; y
// grows downwards, so in plot terms (X1, Y2) is the bottom-left point and
// (X2, Y1) the top-right point.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// Area returns |X2-X1| * |Y2-Y1|.
func (r Rect) Area() int {
	return abs(r.X2-r.X1) * abs(r.Y2-r.Y1)
}

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// ToRectangle converts r to an image.Rectangle.
func (r Rect) ToRectangle() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// Overlap calculates the Jaccard overlap (Intersection over Union) of two
// rectangles.
//
//	IoU = Area of Intersection / Area of Union
//
// The intersection spans [max(X1), min(X2)] horizontally and [max(Y1), min(Y2)]
// vertically. If either span is zero or negative the rectangles do not
// overlap, and 0 is returned immediately: rectangles that only share an edge
// or a corner score exactly 0, and the division below is never reached with a
// zero union.
//
// Union uses inclusion-exclusion:
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float64: A value in [0.0, 1.0]; 1.0 for identical non-degenerate rectangles.
//
// Example Usage:
// ```go
//
//	rect1 := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	rect2 := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//	score := Overlap(rect1, rect2) // 25 / (100 + 100 - 25) = 0.142857
//
// ```
func Overlap(r, o Rect) float64 {
	interW := min(r.X2, o.X2) - max(r.X1, o.X1)
	interH := min(r.Y2, o.Y2) - max(r.Y1, o.Y1)
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea

	return float64(interArea) / float64(unionArea)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
