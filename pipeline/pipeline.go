// Package pipeline runs the full segmentation chain on one image: fitting,
// smoothing, graph construction, segmentation, region bounds and, when ground
// truth is available, overlap evaluation.
package pipeline

import (
	"context"
	"image"
	"os"
	"time"

	"github.com/nvr-ai/go-seg/evaluation"
	"github.com/nvr-ai/go-seg/images"
	"github.com/nvr-ai/go-seg/regions"
	"github.com/nvr-ai/go-seg/segment"
	"github.com/nvr-ai/go-seg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Timings records how long each stage took.
type Timings struct {
	Smooth   time.Duration `json:"smooth"`
	Graph    time.Duration `json:"graph"`
	Segment  time.Duration `json:"segment"`
	Regions  time.Duration `json:"regions"`
	Evaluate time.Duration `json:"evaluate"`
}

// Total is the sum of all stages.
func (t Timings) Total() time.Duration {
	return t.Smooth + t.Graph + t.Segment + t.Regions + t.Evaluate
}

// Result is the outcome of one run.
type Result struct {
	// Width and Height are the dimensions actually segmented.
	Width  int
	Height int
	// Scale is the factor applied by MaxDimension (1 when unchanged).
	Scale        float64
	Segmentation *segment.Result
	Tracker      *regions.Tracker
	// Report is nil when the run had no ground truth.
	Report  *evaluation.Report
	Timings Timings
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pipeline runs images through the configured stages.
type Pipeline struct {
	cfg    Config
	scope  evaluation.Scope
	logger *zap.Logger
}

// New validates cfg and returns a pipeline.
//
// @example
// p, err := pipeline.New(pipeline.DefaultConfig(), pipeline.WithLogger(logger))
// res, err := p.RunFile(ctx, "data/VOC/JPEGImages/cat/0001.jpg", "")
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scope, _ := evaluation.ParseScope(cfg.Scope)

	p := &Pipeline{cfg: cfg, scope: scope, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run segments img and, when truth is non-nil, evaluates the regions against
// the rows of the configured category. truth is in img's coordinates and is
// scaled along with the image.
//
// Arguments:
// - ctx: Checked between stages.
// - img: The image to segment.
// - truth: Ground-truth table, or nil to skip evaluation.
//
// Returns:
// - The run result.
// - An error if any stage fails or ctx is done.
func (p *Pipeline) Run(ctx context.Context, img image.Image, truth evaluation.Table) (*Result, error) {
	fitted, scale := images.Fit(img, p.cfg.MaxDimension)

	planes, err := images.PlanesFromImage(fitted)
	if err != nil {
		return nil, err
	}

	res := &Result{Scale: scale}
	start := time.Now()
	smoothed, err := images.Smooth(planes, p.cfg.Sigma)
	if err != nil {
		return nil, err
	}
	res.Timings.Smooth = time.Since(start)

	var scaled evaluation.Table
	if truth != nil {
		scaled = truth.Scaled(scale)
	}
	if err := p.segment(ctx, smoothed, scaled, res); err != nil {
		return nil, err
	}
	return res, nil
}

// RunPlanes runs the stages after smoothing on already smoothed planes.
func (p *Pipeline) RunPlanes(ctx context.Context, smoothed *images.Planes, truth evaluation.Table) (*Result, error) {
	res := &Result{Scale: 1}
	if err := p.segment(ctx, smoothed, truth, res); err != nil {
		return nil, err
	}
	return res, nil
}

// RunFile decodes the image at imagePath and evaluates it against the VOC
// annotation at annotationPath. An empty annotationPath is derived with
// util.AnnotationPath; a derived path that does not exist skips evaluation.
func (p *Pipeline) RunFile(ctx context.Context, imagePath, annotationPath string) (*Result, error) {
	format, ok := images.FormatFromPath(imagePath)
	if !ok {
		return nil, errors.Wrapf(images.ErrUnsupportedFormat, "%s", imagePath)
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image")
	}
	src := images.Image{Format: format, Data: data}
	img, err := src.Decode()
	if err != nil {
		return nil, errors.Wrap(err, imagePath)
	}

	var truth evaluation.Table
	if annotationPath == "" {
		derived := util.AnnotationPath(imagePath, p.cfg.Category)
		if _, statErr := os.Stat(derived); statErr == nil {
			annotationPath = derived
		} else {
			p.logger.Warn("no annotation found, skipping evaluation",
				zap.String("image", imagePath),
				zap.String("annotation", derived))
		}
	}
	if annotationPath != "" {
		if truth, err = evaluation.LoadVOC(annotationPath); err != nil {
			return nil, err
		}
	}

	p.logger.Info("segmenting image",
		zap.String("image", imagePath),
		zap.Int("width", src.Width),
		zap.Int("height", src.Height),
		zap.Int("truth", len(truth)))

	return p.Run(ctx, img, truth)
}

func (p *Pipeline) segment(ctx context.Context, smoothed *images.Planes, truth evaluation.Table, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res.Width, res.Height = smoothed.Width, smoothed.Height

	start := time.Now()
	graph, err := segment.BuildGraph(smoothed)
	if err != nil {
		return err
	}
	res.Timings.Graph = time.Since(start)

	if err := ctx.Err(); err != nil {
		return err
	}
	start = time.Now()
	seg, err := segment.Segment(graph, p.cfg.Config)
	if err != nil {
		return err
	}
	res.Segmentation = seg
	res.Timings.Segment = time.Since(start)

	if err := ctx.Err(); err != nil {
		return err
	}
	start = time.Now()
	tracker, err := regions.FromLabels(seg.Width, seg.Height, seg.Labels)
	if err != nil {
		return err
	}
	res.Tracker = tracker
	res.Timings.Regions = time.Since(start)

	if truth != nil {
		start = time.Now()
		ev := evaluation.NewEvaluator(tracker,
			evaluation.WithLogger(p.logger),
			evaluation.WithScope(p.scope))
		if err := ev.Initialize(truth, p.cfg.Category); err != nil {
			return err
		}
		if res.Report, err = ev.Evaluate(p.cfg.Verbose); err != nil {
			return err
		}
		res.Timings.Evaluate = time.Since(start)
	}

	p.logger.Debug("segmentation finished",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Int("regions", seg.NumSets),
		zap.Int("edges", graph.Count),
		zap.Duration("graph", res.Timings.Graph),
		zap.Duration("segment", res.Timings.Segment),
		zap.Duration("total", res.Timings.Total()))
	return nil
}
