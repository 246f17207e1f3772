// Package benchmark - sweeps segmentation parameters over a labelled corpus
// and records quality (ABO) and speed.
package benchmark

import (
	"time"

	"github.com/nvr-ai/go-seg/profiler"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PerformanceMetrics captures detailed performance data
type PerformanceMetrics struct {
	Scenario        Scenario                           `json:"scenario"`
	Timestamp       time.Time                          `json:"timestamp"`
	TotalDuration   time.Duration                      `json:"total_duration"`
	Stages          map[string]profiler.OperationStats `json:"stages"`
	ImagesPerSecond float64                            `json:"images_per_second"`
	Quality         QualityMetrics                     `json:"quality"`
	MeanRegions     float64                            `json:"mean_regions"`
	Images          int                                `json:"images"`
	Errors          int                                `json:"errors"`
	ErrorRate       float64                            `json:"error_rate"`
	MemoryStats     MemoryMetrics                      `json:"memory_stats"`
	CPUStats        CPUMetrics                         `json:"cpu_stats"`
}

// QualityMetrics summarises the per-image ABO of a scenario.
type QualityMetrics struct {
	// Evaluated is the number of images that produced an ABO.
	Evaluated int     `json:"evaluated"`
	MeanABO   float64 `json:"mean_abo"`
	StdABO    float64 `json:"std_abo"`
	MinABO    float64 `json:"min_abo"`
	MaxABO    float64 `json:"max_abo"`
	// MatchRate is the fraction of ground-truth objects with a region
	// overlapping by more than the match threshold.
	MatchRate float64 `json:"match_rate"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU      int `json:"num_cpu"`
	Concurrency int `json:"concurrency"`
}

// summarizeQuality computes the ABO statistics. Unbiased standard deviation
// is 0 for fewer than two images.
func summarizeQuality(abos []float64, matched, objects int) QualityMetrics {
	q := QualityMetrics{Evaluated: len(abos)}
	if objects > 0 {
		q.MatchRate = float64(matched) / float64(objects)
	}
	if len(abos) == 0 {
		return q
	}

	q.MinABO = floats.Min(abos)
	q.MaxABO = floats.Max(abos)
	if len(abos) == 1 {
		q.MeanABO = abos[0]
		return q
	}
	q.MeanABO, q.StdABO = stat.MeanStdDev(abos, nil)
	return q
}
