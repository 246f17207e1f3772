package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-seg/evaluation"
	"github.com/nvr-ai/go-seg/images"
	"github.com/nvr-ai/go-seg/util"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// halves returns a size x size image, red on the left and blue on the right.
func halves(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= size/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var halvesTruth = evaluation.Table{
	{Category: "obj", XMin: 0, YMin: 0, XMax: 19, YMax: 39},
	{Category: "obj", XMin: 20, YMin: 0, XMax: 39, YMax: 39},
	{Category: "other", XMin: 0, YMin: 0, XMax: 39, YMax: 39},
}

func newPipeline(t *testing.T, mutate func(*Config)) *Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Category = "obj"
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return p
}

func TestRunHalves(t *testing.T) {
	for _, sigma := range []float64{0, 0.5} {
		p := newPipeline(t, func(c *Config) { c.Sigma = sigma })

		res, err := p.Run(context.Background(), halves(40), halvesTruth)
		require.NoError(t, err)

		assert.Equal(t, 40, res.Width)
		assert.Equal(t, 40, res.Height)
		assert.Equal(t, 1.0, res.Scale)
		assert.Equal(t, 2, res.Segmentation.NumSets)
		assert.Equal(t, 2, res.Tracker.Len())

		require.NotNil(t, res.Report)
		assert.Len(t, res.Report.Rows, 2)
		assert.InDelta(t, 1.0, res.Report.ABO["obj"], 1e-12)
		assert.Len(t, res.Report.Matched(), 2)
		assert.NotContains(t, res.Report.ABO, "other")
	}
}

func TestRunWithoutTruth(t *testing.T) {
	p := newPipeline(t, nil)

	res, err := p.Run(context.Background(), halves(40), nil)
	require.NoError(t, err)
	assert.Nil(t, res.Report)
	assert.Zero(t, res.Timings.Evaluate)
}

func TestRunEmptyCategory(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Category = "absent" })

	res, err := p.Run(context.Background(), halves(40), halvesTruth)
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	require.Len(t, res.Report.Warnings, 1)
	assert.True(t, errors.Is(res.Report.Warnings[0], evaluation.ErrEmptyCategory))
	assert.Empty(t, res.Report.Matched())
}

func TestRunScopeTable(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Scope = "table" })

	res, err := p.Run(context.Background(), halves(40), halvesTruth)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"obj": 1.0, "other": 0}, res.Report.ABO)
}

func TestRunCanceled(t *testing.T) {
	p := newPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, halves(40), halvesTruth)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunMaxDimension(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.MaxDimension = 20 })

	res, err := p.Run(context.Background(), halves(40), halvesTruth)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Width)
	assert.Equal(t, 20, res.Height)
	assert.Equal(t, 0.5, res.Scale)
	assert.Equal(t, 400, len(res.Segmentation.Labels))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sigma = -1
	_, err := New(cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

const halvesVOC = `<annotation>
	<filename>halves.png</filename>
	<object><name>obj</name><bndbox><xmin>0</xmin><ymin>0</ymin><xmax>19</xmax><ymax>39</ymax></bndbox></object>
</annotation>`

func writeDataset(t *testing.T, withAnnotation bool) string {
	t.Helper()
	root := t.TempDir()
	imagePath := filepath.Join(root, util.ImagesDir, "obj", "halves.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(imagePath), 0o755))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, halves(40)))
	require.NoError(t, os.WriteFile(imagePath, buf.Bytes(), 0o600))

	if withAnnotation {
		ann := util.AnnotationPath(imagePath, "obj")
		require.NoError(t, os.MkdirAll(filepath.Dir(ann), 0o755))
		require.NoError(t, os.WriteFile(ann, []byte(halvesVOC), 0o600))
	}
	return imagePath
}

func TestRunFileDerivesAnnotation(t *testing.T) {
	p := newPipeline(t, nil)
	imagePath := writeDataset(t, true)

	res, err := p.RunFile(context.Background(), imagePath, "")
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Len(t, res.Report.Rows, 1)
	assert.InDelta(t, 1.0, res.Report.ABO["obj"], 1e-12)
}

func TestRunFileWithoutAnnotation(t *testing.T) {
	p := newPipeline(t, nil)
	imagePath := writeDataset(t, false)

	res, err := p.RunFile(context.Background(), imagePath, "")
	require.NoError(t, err)
	assert.Nil(t, res.Report)

	_, err = p.RunFile(context.Background(), imagePath, filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestRunFileUnsupported(t *testing.T) {
	p := newPipeline(t, nil)

	_, err := p.RunFile(context.Background(), "clip.mp4", "")
	assert.True(t, errors.Is(err, images.ErrUnsupportedFormat))
}

func TestColorizeAndBoxes(t *testing.T) {
	p := newPipeline(t, nil)
	res, err := p.Run(context.Background(), halves(40), halvesTruth)
	require.NoError(t, err)

	preview := res.Colorize()
	left := res.Segmentation.Labels[0]
	right := res.Segmentation.Labels[39]
	assert.Equal(t, RegionColor(left), preview.RGBAAt(0, 0))
	assert.Equal(t, RegionColor(right), preview.RGBAAt(39, 39))
	assert.NotEqual(t, preview.RGBAAt(0, 0), preview.RGBAAt(39, 0))

	annotated := res.Annotated(halves(40))
	assert.Equal(t, classColors[evaluation.Matched], annotated.RGBAAt(0, 0))
	assert.Equal(t, classColors[evaluation.Matched], annotated.RGBAAt(39, 20))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, annotated.RGBAAt(5, 5))
}

func TestRegionColorStable(t *testing.T) {
	assert.Equal(t, RegionColor(42), RegionColor(42))
	assert.Equal(t, uint8(255), RegionColor(7).A)
}
