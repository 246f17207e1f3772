package benchmark

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/nvr-ai/go-seg/pipeline"
	"github.com/nvr-ai/go-seg/profiler"
	"github.com/nvr-ai/go-seg/segment"
	"github.com/nvr-ai/go-seg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoSamples is returned when a scenario runs before any sample was added.
var ErrNoSamples = errors.New("benchmark corpus is empty")

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios   []Scenario
	samples     []util.Sample
	outputDir   string
	concurrency int
	reportEvery time.Duration
	logger      *zap.Logger
	mu          sync.RWMutex
	results     []PerformanceMetrics
}

// NewSuiteArgs represents the arguments for creating a new benchmark suite.
type NewSuiteArgs struct {
	OutputPath string `json:"outputPath" yaml:"outputPath"`
	// Concurrency bounds the images segmented at once. Values below 1 use
	// runtime.NumCPU().
	Concurrency int `json:"concurrency" yaml:"concurrency"`
	// ReportInterval logs progress while a scenario runs. 0 disables it.
	ReportInterval time.Duration `json:"reportInterval" yaml:"reportInterval"`
	Logger         *zap.Logger   `json:"-"              yaml:"-"`
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - args: The arguments for creating a new benchmark suite.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(args NewSuiteArgs) *Suite {
	logger := args.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := args.Concurrency
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}

	return &Suite{
		outputDir:   args.OutputPath,
		concurrency: concurrency,
		reportEvery: args.ReportInterval,
		logger:      logger,
		scenarios:   make([]Scenario, 0),
		results:     make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddSamples appends images with their annotations to the corpus.
func (bs *Suite) AddSamples(samples ...util.Sample) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.samples = append(bs.samples, samples...)
}

// LoadDataset adds every annotated image of the given categories under root.
//
// Arguments:
//   - root: Dataset root with JPEGImages/ and Annotations/.
//   - categories: Category directories to load.
//
// Returns:
//   - int: The number of samples added.
//   - error: Error if a category directory cannot be read.
func (bs *Suite) LoadDataset(root string, categories ...string) (int, error) {
	added := 0
	for _, category := range categories {
		samples, err := util.LoadDataset(root, category)
		if err != nil {
			return added, errors.Wrapf(err, "category %q", category)
		}
		bs.AddSamples(samples...)
		added += len(samples)
		bs.logger.Info("loaded category",
			zap.String("category", category),
			zap.Int("samples", len(samples)))
	}
	return added, nil
}

// imageResult is the outcome of one image in one scenario.
type imageResult struct {
	abo     float64
	hasABO  bool
	matched int
	objects int
	regions int
	timings pipeline.Timings
	err     error
}

// RunScenario executes a single benchmark scenario
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	bs.mu.RLock()
	samples := slices.Clone(bs.samples)
	bs.mu.RUnlock()

	if len(samples) == 0 {
		return nil, errors.WithStack(ErrNoSamples)
	}

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	// Warmup runs
	for i := 0; i < scenario.WarmupRuns; i++ {
		if res := bs.processSample(ctx, samples[i%len(samples)], scenario); res.err != nil {
			continue // Skip warmup errors
		}
	}

	// Capture initial memory stats
	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	prof := profiler.New(profiler.Options{
		ReportInterval: bs.reportEvery,
		Logger:         bs.logger.With(zap.String("scenario", scenario.Name)),
	})
	defer prof.Stop()
	if bs.reportEvery > 0 {
		prof.Start()
	}

	jobs := max(scenario.Iterations, 1) * len(samples)
	results := make([]imageResult, jobs)

	startTime := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bs.concurrency)
	for i := 0; i < jobs; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := bs.processSample(gctx, samples[i%len(samples)], scenario)
			results[i] = res
			if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				return res.err
			}
			if res.err == nil {
				record(prof, res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	totalDuration := time.Since(startTime)

	// Capture final memory stats
	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	var (
		abos             []float64
		matched, objects int
	)
	for i, res := range results {
		if res.err != nil {
			metrics.Errors++
			bs.logger.Warn("image failed",
				zap.String("scenario", scenario.Name),
				zap.String("image", samples[i%len(samples)].Image),
				zap.Error(res.err))
			continue
		}
		if res.hasABO {
			abos = append(abos, res.abo)
		}
		matched += res.matched
		objects += res.objects
	}

	// Calculate metrics
	snap := prof.Snapshot()
	metrics.Images = jobs
	metrics.TotalDuration = totalDuration
	metrics.ImagesPerSecond = float64(jobs) / totalDuration.Seconds()
	metrics.ErrorRate = float64(metrics.Errors) / float64(jobs)
	metrics.Quality = summarizeQuality(abos, matched, objects)
	metrics.MeanRegions = snap.Metrics["regions"].Mean
	metrics.Stages = snap.Operations

	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}

	metrics.CPUStats = CPUMetrics{
		NumCPU:      runtime.NumCPU(),
		Concurrency: bs.concurrency,
	}

	return metrics, nil
}

func (bs *Suite) processSample(ctx context.Context, sample util.Sample, scenario Scenario) imageResult {
	cfg := pipeline.Config{
		Sigma:        scenario.Sigma,
		Config:       segment.Config{C: scenario.C, MinSize: scenario.MinSize},
		MaxDimension: scenario.MaxDimension,
		Category:     sample.Category,
	}
	p, err := pipeline.New(cfg, pipeline.WithLogger(bs.logger))
	if err != nil {
		return imageResult{err: err}
	}

	res, err := p.RunFile(ctx, sample.Image, sample.Annotation)
	if err != nil {
		return imageResult{err: err}
	}

	out := imageResult{
		regions: res.Segmentation.NumSets,
		timings: res.Timings,
	}
	if res.Report != nil {
		out.abo, out.hasABO = res.Report.ABO[sample.Category]
		for _, row := range res.Report.Rows {
			out.objects++
			if row.Best.Label != "" {
				out.matched++
			}
		}
	}
	return out
}

func record(prof *profiler.Profiler, res imageResult) {
	prof.RecordOperation("smooth", res.timings.Smooth)
	prof.RecordOperation("graph", res.timings.Graph)
	prof.RecordOperation("segment", res.timings.Segment)
	prof.RecordOperation("regions", res.timings.Regions)
	if res.hasABO {
		prof.RecordOperation("evaluate", res.timings.Evaluate)
		prof.RecordMetric("abo", res.abo)
	}
	prof.RecordMetric("regions", float64(res.regions))
}
