package pipeline

import (
	"context"
	"time"

	"github.com/nvr-ai/go-seg/evaluation"
	"github.com/nvr-ai/go-seg/images"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// RunMat segments a BGR Mat, such as a frame read with gocv. Smoothing runs
// in OpenCV on the 8-bit data, so labels can differ slightly from Run on the
// same pixels. MaxDimension is not applied.
//
// Arguments:
// - ctx: Checked between stages.
// - mat: A CV_8UC3 Mat (not modified).
// - truth: Ground-truth table in mat coordinates, or nil.
//
// Returns:
// - The run result.
// - An error if the Mat is not CV_8UC3 or any stage fails.
func (p *Pipeline) RunMat(ctx context.Context, mat gocv.Mat, truth evaluation.Table) (*Result, error) {
	start := time.Now()
	blurred, err := images.SmoothMat(mat, p.cfg.Sigma)
	if err != nil {
		return nil, err
	}
	defer blurred.Close()

	smoothed, err := images.PlanesFromMat(blurred)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	p.logger.Debug("segmenting mat",
		zap.String("checksum", images.ComputeMatChecksum(mat)),
		zap.Int("width", mat.Cols()),
		zap.Int("height", mat.Rows()))

	res, err := p.RunPlanes(ctx, smoothed, truth)
	if err != nil {
		return nil, err
	}
	res.Timings.Smooth = elapsed
	return res, nil
}
