package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/nvr-ai/go-seg/pipeline"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

func main() {
	var (
		deviceID  = flag.Int("device", 0, "Video capture device")
		width     = flag.Int("width", 320, "Frame width used for segmentation")
		sigma     = flag.Float64("sigma", 0.5, "Gaussian smoothing standard deviation")
		k         = flag.Float64("k", 500, "Merge threshold constant")
		minSize   = flag.Int("min-size", 200, "Minimum region size in pixels")
		minBoxPct = flag.Float64("min-box", 1, "Hide boxes smaller than this percentage of the frame")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = logger.Sync() }()

	cfg := pipeline.DefaultConfig()
	cfg.Sigma = *sigma
	cfg.C = float32(*k)
	cfg.MinSize = *minSize
	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// open webcam
	webcam, err := gocv.OpenVideoCapture(*deviceID)
	if err != nil {
		logger.Fatal("cannot open capture device", zap.Int("device", *deviceID), zap.Error(err))
	}
	defer webcam.Close()

	// open display window
	window := gocv.NewWindow("Segmentation")
	defer window.Close()

	// prepare image matrices
	img := gocv.NewMat()
	defer img.Close()
	small := gocv.NewMat()
	defer small.Close()

	blue := color.RGBA{0, 0, 255, 0}

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	logger.Info("start reading camera device", zap.Int("device", *deviceID))
	for {
		if ok := webcam.Read(&img); !ok {
			logger.Error("cannot read device", zap.Int("device", *deviceID))
			return
		}
		if img.Empty() {
			continue
		}

		// Update FPS calculation
		frameCount++
		currentTime := time.Now()
		elapsed := currentTime.Sub(lastTime).Seconds()

		// Calculate FPS every second
		if elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = currentTime
		}

		scale := float64(*width) / float64(img.Cols())
		height := int(float64(img.Rows()) * scale)
		gocv.Resize(img, &small, image.Pt(*width, height), 0, 0, gocv.InterpolationArea)

		res, err := p.RunMat(context.Background(), small, nil)
		if err != nil {
			logger.Error("segmentation failed", zap.Error(err))
			continue
		}

		minArea := int(float64(res.Width*res.Height) * *minBoxPct / 100)
		drawn := 0
		for _, label := range res.Tracker.Labels() {
			rect, err := res.Tracker.Rect(label)
			if err != nil || rect.Area() < minArea {
				continue
			}
			r := image.Rect(
				int(float64(rect.X1)/scale), int(float64(rect.Y1)/scale),
				int(float64(rect.X2)/scale), int(float64(rect.Y2)/scale),
			)
			gocv.Rectangle(&img, r, blue, 2)
			drawn++
		}

		status := fmt.Sprintf("regions: %d | boxes: %d | %.1f FPS | %v",
			res.Segmentation.NumSets, drawn, fps, res.Timings.Total().Round(time.Millisecond))
		gocv.PutText(&img, status, image.Pt(10, 30), gocv.FontHersheyPlain, 1.2, blue, 2)

		// show the image in the window, and wait 1 millisecond
		window.IMShow(img)
		window.WaitKey(1)
	}
}
