package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvr-ai/go-seg/images"
	"github.com/nvr-ai/go-seg/pipeline"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	defaults := pipeline.DefaultConfig()

	var (
		configFile   string
		imagePath    string
		gtPath       string
		outputDir    string
		category     string
		scope        string
		sigma        float64
		k            float64
		minSize      int
		maxDimension int
		verbose      bool
	)
	flag.StringVar(&configFile, "config", "", "YAML or JSON pipeline config (flags set explicitly override it)")
	flag.StringVar(&imagePath, "image", "", "Path to the image to segment (.jpg, .png, .webp, .bmp, .tiff)")
	flag.StringVar(&gtPath, "gt", "", "Ground-truth VOC XML (default: derived from the dataset layout)")
	flag.StringVar(&outputDir, "output", "", "Directory for the segmentation and box previews (PNG)")
	flag.StringVar(&category, "category", defaults.Category, "Ground-truth category to evaluate")
	flag.StringVar(&scope, "scope", defaults.Scope, "ABO scope: category or table")
	flag.Float64Var(&sigma, "sigma", defaults.Sigma, "Gaussian smoothing standard deviation")
	flag.Float64Var(&k, "k", float64(defaults.C), "Merge threshold constant")
	flag.IntVar(&minSize, "min-size", defaults.MinSize, "Minimum region size in pixels")
	flag.IntVar(&maxDimension, "max-dimension", 0, "Downscale images larger than this (0 = never)")
	flag.BoolVar(&verbose, "verbose", false, "Log every overlap comparison")
	flag.Parse()

	if imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := defaults
	if configFile != "" {
		if cfg, err = pipeline.LoadConfig(configFile); err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "category":
			cfg.Category = category
		case "scope":
			cfg.Scope = scope
		case "sigma":
			cfg.Sigma = sigma
		case "k":
			cfg.C = float32(k)
		case "min-size":
			cfg.MinSize = minSize
		case "max-dimension":
			cfg.MaxDimension = maxDimension
		case "verbose":
			cfg.Verbose = verbose
		}
	})

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	res, err := p.RunFile(context.Background(), imagePath, gtPath)
	if err != nil {
		logger.Fatal("segmentation failed", zap.String("image", imagePath), zap.Error(err))
	}

	printResult(imagePath, cfg, res)

	if outputDir != "" {
		if err := writePreviews(outputDir, imagePath, res); err != nil {
			logger.Fatal("failed to write previews", zap.Error(err))
		}
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func printResult(imagePath string, cfg pipeline.Config, res *pipeline.Result) {
	fmt.Printf("Image:    %s\n", imagePath)
	fmt.Printf("Size:     %dx%d (scale %.3f)\n", res.Width, res.Height, res.Scale)
	fmt.Printf("Params:   sigma=%.2f k=%.1f min_size=%d\n", cfg.Sigma, cfg.C, cfg.MinSize)
	fmt.Printf("Regions:  %d\n", res.Segmentation.NumSets)
	fmt.Printf("Time:     %v\n", res.Timings.Total())

	if res.Report == nil {
		fmt.Println("No ground truth, evaluation skipped")
		return
	}

	for _, w := range res.Report.Warnings {
		fmt.Printf("Warning:  %v\n", w)
	}
	for i, row := range res.Report.Rows {
		fmt.Printf("Object %d: %s %v best=%s (%.3f) overall=%s (%.3f)\n",
			i, row.Row.Category, row.Row.Rect(),
			orNone(row.Best.Label), row.Best.Score,
			orNone(row.Overall.Label), row.Overall.Score)
	}
	fmt.Printf("Matched:  %s\n", strings.Join(res.Report.Matched(), ", "))

	keys := make([]string, 0, len(res.Report.ABO))
	for key := range res.Report.ABO {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("ABO[%s]: %.4f\n", key, res.Report.ABO[key])
	}
}

func orNone(label string) string {
	if label == "" {
		return "none"
	}
	return label
}

func writePreviews(dir, imagePath string, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	format, _ := images.FormatFromPath(imagePath)
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return errors.Wrap(err, "failed to read image")
	}
	src := images.Image{Format: format, Data: data}
	original, err := src.Decode()
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	if err := savePNG(filepath.Join(dir, base+"_segments.png"), res.Colorize()); err != nil {
		return err
	}
	return savePNG(filepath.Join(dir, base+"_boxes.png"), res.Annotated(original))
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create preview")
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	return nil
}
