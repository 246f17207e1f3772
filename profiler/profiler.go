// Package profiler records operation timings and numeric metrics and can
// report them periodically through a zap logger.
package profiler

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Options configures the profiler.
type Options struct {
	// ReportInterval specifies how often Start emits status reports (default: 2s)
	ReportInterval time.Duration
	// MaxSamples specifies maximum number of samples kept per name (default: 10000)
	MaxSamples int
	// Logger receives the reports (default: no-op)
	Logger *zap.Logger
}

// Profiler collects samples. It is safe for concurrent use.
type Profiler struct {
	reportInterval time.Duration
	maxSamples     int
	logger         *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	start   time.Time
	running bool

	operations map[string][]float64
	metrics    map[string][]float64
	counts     map[string]int64
}

// OperationStats summarises the durations of one operation.
type OperationStats struct {
	Count int64         `json:"count"`
	Mean  time.Duration `json:"mean"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
}

// MetricStats summarises the values of one metric.
type MetricStats struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Snapshot is a point-in-time copy of all statistics.
type Snapshot struct {
	Uptime     time.Duration             `json:"uptime"`
	Goroutines int                       `json:"goroutines"`
	HeapAlloc  uint64                    `json:"heap_alloc"`
	Operations map[string]OperationStats `json:"operations"`
	Metrics    map[string]MetricStats    `json:"metrics"`
}

// New creates a profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler
//
// Returns:
// - A configured Profiler instance
func New(opts Options) *Profiler {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 10000
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Profiler{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		logger:         opts.Logger,
		ctx:            ctx,
		cancel:         cancel,
		start:          time.Now(),
		operations:     make(map[string][]float64),
		metrics:        make(map[string][]float64),
		counts:         make(map[string]int64),
	}
}

// Start begins emitting periodic reports. Calling it again while running
// does nothing.
func (p *Profiler) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running || p.ctx.Err() != nil {
		return
	}
	p.running = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				p.Report()
			}
		}
	}()
}

// Stop ends reporting and waits for the reporting goroutine to exit. A
// stopped profiler cannot be restarted; samples stay readable.
func (p *Profiler) Stop() {
	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// RecordMetric records a metric value.
func (p *Profiler) RecordMetric(name string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics[name] = p.appendSample(p.metrics[name], value)
	p.counts["metric:"+name]++
}

// RecordOperation records the duration of a completed operation.
func (p *Profiler) RecordOperation(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.operations[name] = p.appendSample(p.operations[name], float64(d))
	p.counts["op:"+name]++
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
//
// @example
// done := prof.StartOperation("segment")
// defer done()
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.RecordOperation(name, time.Since(start))
	}
}

func (p *Profiler) appendSample(samples []float64, v float64) []float64 {
	samples = append(samples, v)
	if len(samples) > p.maxSamples {
		samples = samples[1:]
	}
	return samples
}

// Snapshot returns the current statistics. Quantiles and extremes cover the
// retained samples; Count covers every recorded sample.
func (p *Profiler) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snap := Snapshot{
		Uptime:     time.Since(p.start),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Operations: make(map[string]OperationStats, len(p.operations)),
		Metrics:    make(map[string]MetricStats, len(p.metrics)),
	}

	for name, samples := range p.operations {
		sorted := sortedCopy(samples)
		snap.Operations[name] = OperationStats{
			Count: p.counts["op:"+name],
			Mean:  time.Duration(stat.Mean(sorted, nil)),
			Min:   time.Duration(sorted[0]),
			Max:   time.Duration(sorted[len(sorted)-1]),
			P50:   time.Duration(stat.Quantile(0.5, stat.Empirical, sorted, nil)),
			P95:   time.Duration(stat.Quantile(0.95, stat.Empirical, sorted, nil)),
		}
	}
	for name, samples := range p.metrics {
		snap.Metrics[name] = MetricStats{
			Count: p.counts["metric:"+name],
			Mean:  stat.Mean(samples, nil),
			Min:   floats.Min(samples),
			Max:   floats.Max(samples),
		}
	}

	return snap
}

// Report logs the current snapshot at info level.
func (p *Profiler) Report() {
	snap := p.Snapshot()

	fields := []zap.Field{
		zap.Duration("uptime", snap.Uptime),
		zap.Int("goroutines", snap.Goroutines),
		zap.Uint64("heap_alloc", snap.HeapAlloc),
	}
	for _, name := range sortedKeys(snap.Operations) {
		op := snap.Operations[name]
		fields = append(fields, zap.Dict(name,
			zap.Int64("count", op.Count),
			zap.Duration("mean", op.Mean),
			zap.Duration("p95", op.P95)))
	}
	for _, name := range sortedKeys(snap.Metrics) {
		m := snap.Metrics[name]
		fields = append(fields, zap.Dict(name,
			zap.Int64("count", m.Count),
			zap.Float64("mean", m.Mean)))
	}
	p.logger.Info("profiler status", fields...)
}

func sortedCopy(samples []float64) []float64 {
	out := slices.Clone(samples)
	slices.Sort(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
