// Package evaluation scores region bounding boxes against ground-truth
// object boxes with the Average Best Overlap (ABO) measure.
package evaluation

import (
	"slices"

	"github.com/nvr-ai/go-seg/images"
)

// Row is one labelled ground-truth object.
type Row struct {
	Category string `json:"name" yaml:"name"`
	XMin     int    `json:"xmin" yaml:"xmin"`
	YMin     int    `json:"ymin" yaml:"ymin"`
	XMax     int    `json:"xmax" yaml:"xmax"`
	YMax     int    `json:"ymax" yaml:"ymax"`
}

// Rect returns the row's box as (XMin, YMin)-(XMax, YMax).
func (r Row) Rect() images.Rect {
	return images.Rect{X1: r.XMin, Y1: r.YMin, X2: r.XMax, Y2: r.YMax}
}

// Scaled returns a copy of r with every coordinate scaled by factor, for
// ground truth of an image that was resized before segmentation.
func (r Row) Scaled(factor float64) Row {
	s := images.Scale(r.Rect(), factor)
	return Row{Category: r.Category, XMin: s.X1, YMin: s.Y1, XMax: s.X2, YMax: s.Y2}
}

// Table is a set of ground-truth rows. Row order is preserved by every
// operation.
type Table []Row

// Filter returns the rows whose category equals category.
func (t Table) Filter(category string) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the distinct category names in ascending order.
func (t Table) Categories() []string {
	names := make([]string, 0, len(t))
	for _, r := range t {
		names = append(names, r.Category)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Scaled returns a copy of t with every row scaled by factor.
func (t Table) Scaled(factor float64) Table {
	if factor == 1 {
		return slices.Clone(t)
	}
	out := make(Table, len(t))
	for i, r := range t {
		out[i] = r.Scaled(factor)
	}
	return out
}
