// Package images - provides the smoothing and partitioning helpers used to
// prepare colour planes for graph segmentation.
package images

import (
	"math"
	"runtime"
	"sync"
)

// gaussianWidth is the number of standard deviations covered by the
// one-sided smoothing mask.
const gaussianWidth = 4.0

// minSigma is the smallest standard deviation accepted by GaussianMask.
const minSigma = 0.01

// GaussianMask creates the one-sided Gaussian mask used by Smooth.
// mask[0] weights the centre pixel and mask[i] weights both pixels at
// distance i, so the effective kernel is 2*len(mask)-1 wide.
// The mask is normalised so that the full symmetric kernel sums to 1.0.
//
// Arguments:
// - sigma: Standard deviation of the Gaussian. Values below 0.01 are raised to 0.01.
//
// Returns:
// - A normalised one-sided mask of length ceil(4*sigma)+1.
//
// @example
// mask := GaussianMask(0.5) // len(mask) == 3
func GaussianMask(sigma float64) []float64 {
	sigma = math.Max(sigma, minSigma)
	size := int(math.Ceil(sigma*gaussianWidth)) + 1
	mask := make([]float64, size)

	for i := range mask {
		d := float64(i) / sigma
		mask[i] = math.Exp(-0.5 * d * d)
	}

	// The centre tap is counted once, every other tap twice.
	sum := 0.0
	for _, v := range mask {
		sum += math.Abs(v)
	}
	sum = 2*sum - math.Abs(mask[0])
	for i := range mask {
		mask[i] /= sum
	}

	return mask
}

// Smooth applies a separable Gaussian blur to each colour plane.
// Samples outside the image are clamped to the nearest edge pixel.
//
// Arguments:
// - p: Source planes (not modified).
// - sigma: Standard deviation of the Gaussian.
//
// Returns:
// - New smoothed planes of the same dimensions, or ErrInputShape.
//
// @example
// smoothed, err := Smooth(planes, 0.5)
func Smooth(p *Planes, sigma float64) (*Planes, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	mask := GaussianMask(sigma)

	dst, err := NewPlanes(p.Width, p.Height)
	if err != nil {
		return nil, err
	}
	tmp := make([]float32, p.Len())

	channels := [][2][]float32{{p.R, dst.R}, {p.G, dst.G}, {p.B, dst.B}}
	for _, ch := range channels {
		ConvolveHorizontal(ch[0], tmp, p.Width, p.Height, mask)
		ConvolveVertical(tmp, ch[1], p.Width, p.Height, mask)
	}

	return dst, nil
}

// ConvolveHorizontal convolves every row of src with a one-sided symmetric
// mask and writes the result to dst. src and dst must not alias.
//
// Arguments:
// - src: Source plane (row-major, width*height values).
// - dst: Destination plane (same size as src).
// - width, height: Plane dimensions.
// - mask: One-sided mask as produced by GaussianMask.
func ConvolveHorizontal(src, dst []float32, width, height int, mask []float64) {
	Parallel(height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			row := src[y*width : (y+1)*width]
			out := dst[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				sum := mask[0] * float64(row[x])
				for i := 1; i < len(mask); i++ {
					left := row[max(x-i, 0)]
					right := row[min(x+i, width-1)]
					sum += mask[i] * float64(left+right)
				}
				out[x] = float32(sum)
			}
		}
	})
}

// ConvolveVertical is the column-wise counterpart of ConvolveHorizontal.
func ConvolveVertical(src, dst []float32, width, height int, mask []float64) {
	Parallel(width, func(partStart, partEnd int) {
		for x := partStart; x < partEnd; x++ {
			for y := 0; y < height; y++ {
				sum := mask[0] * float64(src[y*width+x])
				for i := 1; i < len(mask); i++ {
					up := src[max(y-i, 0)*width+x]
					down := src[min(y+i, height-1)*width+x]
					sum += mask[i] * float64(up+down)
				}
				dst[y*width+x] = float32(sum)
			}
		}
	})
}

// Clamp restricts a value to the specified range [lo, hi].
//
// @example
// clamped := Clamp(300.5, 0, 255) // Returns 255
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Parallel executes fn over [0, dataSize) split into one contiguous partition
// per CPU. Each partition is processed by its own goroutine; small inputs run
// on the calling goroutine.
//
// Arguments:
// - dataSize: The size of the data to process.
// - fn: Function to execute for each partition (receives start and end indices).
//
// @example
//
//	Parallel(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	numGoroutines := runtime.NumCPU()

	// Parallel processing overhead isn't worth it for tiny inputs.
	if dataSize < numGoroutines*2 {
		fn(0, dataSize)
		return
	}

	partSize := dataSize / numGoroutines

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize

		// Last partition gets any remaining data.
		if i == numGoroutines-1 {
			partEnd = dataSize
		}

		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}

	wg.Wait()
}
