package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvr-ai/go-seg/benchmark"
	"go.uber.org/zap"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Path to benchmark configuration file")
		scenarioFile = flag.String("scenarios", "", "Path to scenario configuration file")
		outputDir    = flag.String("output", "./benchmark_results", "Output directory for results")
		datasetRoot  = flag.String("dataset", "", "Dataset root containing JPEGImages/ and Annotations/")
		categories   = flag.String("categories", "person", "Comma separated categories to evaluate")
		concurrency  = flag.Int("concurrency", 0, "Images segmented at once (0 = one per CPU)")
		quick        = flag.Bool("quick", false, "Run quick benchmark scenarios")
		sweep        = flag.Bool("sweep", false, "Run the sigma x k x min-size parameter sweep")
		resolutions  = flag.Bool("resolutions", false, "Compare different downscaling limits")
		timeout      = flag.Duration("timeout", 30*time.Minute, "Benchmark timeout duration")
		report       = flag.Duration("report-interval", 10*time.Second, "Progress report interval (0 disables)")
		verbose      = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Load configuration if provided
	config := benchmark.DefaultConfig()
	if *configFile != "" {
		config, err = benchmark.LoadConfig(*configFile)
		if err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}
	} else {
		config.OutputDir = *outputDir
		config.DatasetRoot = *datasetRoot
		config.Categories = strings.Split(*categories, ",")
		config.MaxConcurrency = *concurrency
		config.TimeoutSeconds = int(timeout.Seconds())
	}

	if config.DatasetRoot == "" {
		logger.Fatal("dataset root is required (-dataset)")
	}

	suite := benchmark.NewSuite(benchmark.NewSuiteArgs{
		OutputPath:     config.OutputDir,
		Concurrency:    config.MaxConcurrency,
		ReportInterval: *report,
		Logger:         logger,
	})

	n, err := suite.LoadDataset(config.DatasetRoot, config.Categories...)
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	if n == 0 {
		logger.Fatal("no annotated images found", zap.String("dataset", config.DatasetRoot))
	}

	predefined := &benchmark.PredefinedScenarios{}
	var sets []*benchmark.ScenarioSet

	if *scenarioFile != "" {
		scenarioSet, err := benchmark.LoadScenarioSet(*scenarioFile)
		if err != nil {
			logger.Fatal("failed to load scenario file", zap.Error(err))
		}
		sets = append(sets, scenarioSet)
	} else {
		if *quick {
			sets = append(sets, predefined.GetQuickScenarios())
		}
		if *sweep {
			sets = append(sets, predefined.GetSweepScenarios(
				[]float64{0.5, 0.8},
				[]float32{200, 500, 1000},
				[]int{20, 50, 100},
			))
		}
		if *resolutions {
			sets = append(sets, predefined.GetResolutionComparisonScenarios([]int{256, 320, 500}))
		}

		// If no specific scenarios requested, use quick by default
		if len(sets) == 0 {
			sets = append(sets, predefined.GetQuickScenarios())
		}
	}

	for _, set := range sets {
		for _, scenario := range set.Scenarios {
			suite.AddScenario(scenario)
		}
		logger.Info("added scenarios", zap.String("set", set.Name), zap.Int("count", len(set.Scenarios)))
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.TimeoutSeconds)*time.Second)
	defer cancel()

	logger.Info("starting benchmark", zap.Int("images", n))
	start := time.Now()

	if err := suite.RunAllScenarios(ctx); err != nil {
		logger.Fatal("benchmark execution failed", zap.Error(err))
	}

	results := suite.GetResults()
	fmt.Printf("\n=== BENCHMARK RESULTS SUMMARY ===\n")
	fmt.Printf("Completed in %v\n", time.Since(start))
	fmt.Printf("Total scenarios: %d\n", len(results))
	fmt.Printf("Results saved to: %s\n", config.OutputDir)

	for _, result := range results {
		fmt.Printf("  %s: ABO %.4f (+/- %.4f) | match rate %.2f | %.1f regions | %.2f img/s\n",
			result.Scenario.Name,
			result.Quality.MeanABO,
			result.Quality.StdABO,
			result.Quality.MatchRate,
			result.MeanRegions,
			result.ImagesPerSecond)
	}

	if best, ok := suite.Best(); ok {
		fmt.Printf("\nBest scenario: %s (ABO %.4f)\n", best.Scenario.Name, best.Quality.MeanABO)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Parameter sweep for graph-based segmentation quality (ABO) and speed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(
			os.Stderr,
			"  %s -dataset ./data/VOC2012 -categories cat,dog -quick\n",
			filepath.Base(os.Args[0]),
		)
		fmt.Fprintf(
			os.Stderr,
			"  %s -config ./benchmark_config.json -scenarios ./scenarios.json\n",
			filepath.Base(os.Args[0]),
		)
		fmt.Fprintf(
			os.Stderr,
			"  %s -dataset ./data/VOC2012 -sweep -resolutions -concurrency 4\n",
			filepath.Base(os.Args[0]),
		)
	}
}
