package images

import (
	"crypto/md5"
	"fmt"
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ComputeMatChecksum generates a deterministic checksum for a Mat so repeated
// runs over the same frame can be compared.
//
// Arguments:
// - mat: The Mat to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for an empty Mat.
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	data, _ := mat.DataPtrUint8()
	hash := md5.New()
	hash.Write(data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// PlanesFromMat splits an 8-bit, 3-channel BGR Mat (as returned by
// gocv.IMRead) into RGB planes.
//
// Arguments:
// - mat: A CV_8UC3 Mat.
//
// Returns:
// - The planes, or ErrInputShape for empty or non 3-channel Mats.
func PlanesFromMat(mat gocv.Mat) (*Planes, error) {
	if mat.Empty() {
		return nil, errors.Wrap(ErrInputShape, "mat is empty")
	}
	if mat.Channels() != 3 || mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, errors.Wrapf(ErrInputShape, "mat has %d channels of type %v, want CV_8UC3",
			mat.Channels(), mat.Type())
	}

	p, err := NewPlanes(mat.Cols(), mat.Rows())
	if err != nil {
		return nil, err
	}
	data, err := mat.DataPtrUint8()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mat data")
	}
	if !mat.IsContinuous() {
		return nil, errors.Wrap(ErrInputShape, "mat is not continuous")
	}

	Parallel(p.Height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < p.Width; x++ {
				off := (y*p.Width + x) * 3
				p.Set(x, y, float32(data[off+2]), float32(data[off+1]), float32(data[off]))
			}
		}
	})
	return p, nil
}

// SmoothMat blurs a Mat with OpenCV's Gaussian filter. It is the OpenCV
// counterpart of Smooth for callers that already hold Mats; the kernel size
// is derived from sigma the same way as GaussianMask.
//
// Arguments:
// - src: Source Mat (not modified).
// - sigma: Standard deviation of the Gaussian.
//
// Returns:
// - A new Mat; the caller must Close it.
// - An error if OpenCV rejects the input.
func SmoothMat(src gocv.Mat, sigma float64) (gocv.Mat, error) {
	dst := gocv.NewMat()
	k := 2*len(GaussianMask(sigma)) - 1
	if err := gocv.GaussianBlur(src, &dst, image.Pt(k, k), sigma, sigma, gocv.BorderReplicate); err != nil {
		dst.Close()
		return gocv.NewMat(), errors.Wrap(err, "gaussian blur failed")
	}
	return dst, nil
}
