package segment

import "github.com/nvr-ai/go-seg/images"

// edgesPerPixel is the slot budget per pixel in Graph.Edges.
const edgesPerPixel = 4

// Edge joins two pixel indices with a dissimilarity weight.
type Edge struct {
	A, B int
	W    float32
}

// Graph is the pixel adjacency list of one image. Edges has exactly
// 4*Width*Height slots; only the first Count are populated.
type Graph struct {
	Width  int
	Height int
	Edges  []Edge
	Count  int
}

// Populated returns the emitted edges, excluding unused trailing slots.
func (g *Graph) Populated() []Edge {
	return g.Edges[:g.Count]
}

// NumVertices returns Width*Height.
func (g *Graph) NumVertices() int {
	return g.Width * g.Height
}

// BuildGraph emits the weighted edges of the pixel grid described by p.
//
// For pixel (x, y) edges are emitted, in this order, to
//   - (x+1, y)   when x+1 < width
//   - (x, y+1)   when y+1 < height
//   - (x+1, y+1) when x+1 < width and y < height-2
//   - (x+1, y-1) when x+1 < width and y > 0
//
// The lower-right diagonal is deliberately not emitted from the second-to-last
// row. Each weight is the Euclidean RGB distance of the two pixels in p.
//
// Rows are filled concurrently; every row writes a precomputed slot range so
// the edge order is identical to a sequential row-major scan.
func BuildGraph(p *images.Planes) (*Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w, h := p.Width, p.Height

	offsets := make([]int, h+1)
	for y := 0; y < h; y++ {
		offsets[y+1] = offsets[y] + rowEdgeCount(w, h, y)
	}

	g := &Graph{
		Width:  w,
		Height: h,
		Edges:  make([]Edge, edgesPerPixel*w*h),
		Count:  offsets[h],
	}

	images.Parallel(h, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			num := offsets[y]
			emit := func(a, b int) {
				g.Edges[num] = Edge{A: a, B: b, W: p.Diff(a, b)}
				num++
			}
			for x := 0; x < w; x++ {
				i := y*w + x
				if x < w-1 {
					emit(i, i+1)
				}
				if y < h-1 {
					emit(i, i+w)
				}
				if x < w-1 && y < h-2 {
					emit(i, i+w+1)
				}
				if x < w-1 && y > 0 {
					emit(i, i-w+1)
				}
			}
		}
	})

	return g, nil
}

// rowEdgeCount returns how many edges BuildGraph emits from row y.
func rowEdgeCount(w, h, y int) int {
	perPixel := 1 // right
	if y < h-2 {
		perPixel++ // lower-right
	}
	if y > 0 {
		perPixel++ // upper-right
	}
	n := (w - 1) * perPixel
	if y < h-1 {
		n += w // down
	}
	return n
}
