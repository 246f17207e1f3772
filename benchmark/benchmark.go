package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RunAllScenarios executes all configured benchmark scenarios and saves the
// results. A failing scenario is logged and skipped; context errors stop the
// run.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	bs.mu.Lock()
	scenarios := slices.Clone(bs.scenarios)
	bs.mu.Unlock()

	for _, scenario := range scenarios {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			bs.logger.Error("scenario failed", zap.String("scenario", scenario.Name), zap.Error(err))
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		bs.logger.Info("scenario completed",
			zap.String("scenario", scenario.Name),
			zap.Float64("mean_abo", metrics.Quality.MeanABO),
			zap.Float64("images_per_second", metrics.ImagesPerSecond))
	}

	_, err := bs.SaveResults()
	return err
}

// SaveResults persists benchmark results to filesystem
//
// Returns:
//   - []string: The JSON and CSV paths written.
//   - error: Error if the output directory or a file cannot be written.
func (bs *Suite) SaveResults() ([]string, error) {
	results := bs.GetResults()

	// Ensure output directory exists
	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	// Save detailed results as JSON
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal results")
	}

	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write results file")
	}

	// Save summary CSV
	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return nil, errors.Wrap(err, "failed to save summary CSV")
	}

	bs.logger.Info("results saved",
		zap.String("results", resultsFile),
		zap.String("summary", summaryFile))

	return []string{resultsFile, summaryFile}, nil
}

var summaryHeader = []string{
	"Scenario", "Sigma", "C", "Min_Size", "Max_Dimension",
	"Mean_ABO", "Std_ABO", "Match_Rate", "Mean_Regions",
	"Images_Per_Second", "Total_Duration_ms", "Error_Rate",
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(summaryHeader); err != nil {
		return err
	}

	f := func(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) }
	for _, result := range results {
		s := result.Scenario
		record := []string{
			s.Name,
			f(s.Sigma, 2),
			f(float64(s.C), 1),
			strconv.Itoa(s.MinSize),
			strconv.Itoa(s.MaxDimension),
			f(result.Quality.MeanABO, 4),
			f(result.Quality.StdABO, 4),
			f(result.Quality.MatchRate, 4),
			f(result.MeanRegions, 1),
			f(result.ImagesPerSecond, 2),
			f(float64(result.TotalDuration.Nanoseconds())/1e6, 2),
			f(result.ErrorRate, 4),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// GetResults returns all benchmark results
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	return slices.Clone(bs.results)
}

// Best returns the result with the highest mean ABO. The second result is
// false when there are no results.
func (bs *Suite) Best() (PerformanceMetrics, bool) {
	results := bs.GetResults()
	if len(results) == 0 {
		return PerformanceMetrics{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Quality.MeanABO > best.Quality.MeanABO {
			best = r
		}
	}
	return best, true
}
