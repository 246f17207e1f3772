// Package segment implements graph-based image segmentation after
// Felzenszwalb and Huttenlocher.
//
// An image is viewed as a graph whose vertices are pixels and whose edges
// join each pixel to its right, lower, lower-right and upper-right
// neighbours, weighted by the Euclidean distance of their smoothed colours.
// Edges are visited in ascending weight order and two regions are merged when
// the connecting edge is no heavier than either region's internal threshold,
// C/|region| plus the heaviest edge that built it. A final pass absorbs
// regions smaller than MinSize into a neighbour.
//
// Basic usage:
//
//	smoothed, err := images.Smooth(planes, 0.5)
//	cfg := segment.DefaultConfig()
//	cfg.C = 300
//	result, err := segment.SegmentPlanes(smoothed, cfg)
//	// result.Labels[i] is the region root of pixel i
//	// result.NumSets is the number of regions
//
// Segmentation of one image is strictly sequential in edge order; separate
// images may be segmented concurrently.
package segment
