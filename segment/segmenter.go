package segment

import (
	"cmp"
	"slices"

	"github.com/nvr-ai/go-seg/images"
	"github.com/pkg/errors"
)

// Result is the outcome of segmenting one image.
type Result struct {
	Width  int
	Height int
	// Forest is the final disjoint-set forest over pixel indices.
	Forest *Forest
	// NumSets is the number of regions.
	NumSets int
	// Labels[i] is the root of pixel i.
	Labels []int
}

// Roots returns the distinct region roots in ascending order.
func (r *Result) Roots() []int {
	seen := make([]bool, len(r.Labels))
	roots := make([]int, 0, r.NumSets)
	for _, l := range r.Labels {
		if !seen[l] {
			seen[l] = true
			roots = append(roots, l)
		}
	}
	slices.Sort(roots)
	return roots
}

// Sizes returns the pixel count of every region keyed by root.
func (r *Result) Sizes() map[int]int {
	sizes := make(map[int]int, r.NumSets)
	for _, l := range r.Labels {
		sizes[l]++
	}
	return sizes
}

// Segment partitions the graph's vertices into regions.
//
// The populated edges are stably sorted by weight, so equal weights keep
// their emission order. Each vertex starts with threshold C/1. For every edge
// (a, b, w) whose endpoints lie in different regions, the regions merge when
// w does not exceed either region's threshold, and the merged region's
// threshold becomes w + C/size. A second pass over the same order then joins
// any two adjacent regions when either is smaller than MinSize.
//
// g is not modified.
func Segment(g *Graph, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g == nil || g.Width <= 0 || g.Height <= 0 {
		return nil, errors.Wrap(ErrInputShape, "graph has no vertices")
	}

	edges := slices.Clone(g.Populated())
	slices.SortStableFunc(edges, func(a, b Edge) int {
		return cmp.Compare(a.W, b.W)
	})

	n := g.NumVertices()
	u := NewForest(n)

	threshold := make([]float32, n)
	for i := range threshold {
		threshold[i] = cfg.threshold(1)
	}

	for _, e := range edges {
		a := u.find(e.A)
		b := u.find(e.B)
		if a == b {
			continue
		}
		if e.W <= threshold[a] && e.W <= threshold[b] {
			root := u.join(a, b)
			threshold[root] = e.W + cfg.threshold(u.elts[root].size)
		}
	}

	if cfg.MinSize > 0 {
		for _, e := range edges {
			a := u.find(e.A)
			b := u.find(e.B)
			if a != b && (u.elts[a].size < cfg.MinSize || u.elts[b].size < cfg.MinSize) {
				u.join(a, b)
			}
		}
	}

	return &Result{
		Width:   g.Width,
		Height:  g.Height,
		Forest:  u,
		NumSets: u.NumSets(),
		Labels:  u.Roots(),
	}, nil
}

// SegmentPlanes builds the pixel graph of p and segments it.
//
// @example
// result, err := SegmentPlanes(smoothed, DefaultConfig())
func SegmentPlanes(p *images.Planes, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := BuildGraph(p)
	if err != nil {
		return nil, err
	}
	return Segment(g, cfg)
}
