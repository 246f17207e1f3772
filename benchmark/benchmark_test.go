package benchmark

import (
	"bytes"
	"context"
	"encoding/csv"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nvr-ai/go-seg/util"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const halvesVOC = `<annotation>
	<object><name>obj</name><bndbox><xmin>0</xmin><ymin>0</ymin><xmax>15</xmax><ymax>31</ymax></bndbox></object>
	<object><name>obj</name><bndbox><xmin>16</xmin><ymin>0</ymin><xmax>31</xmax><ymax>31</ymax></bndbox></object>
</annotation>`

func halvesPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			c := color.RGBA{G: 255, A: 255}
			if x >= 16 {
				c = color.RGBA{R: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// writeDataset lays out n annotated images under root/JPEGImages/obj.
func writeDataset(t *testing.T, n int) string {
	t.Helper()
	root := t.TempDir()
	imgDir := filepath.Join(root, util.ImagesDir, "obj")
	annDir := filepath.Join(root, util.AnnotationsDir, "obj")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))
	require.NoError(t, os.MkdirAll(annDir, 0o755))

	data := halvesPNG(t)
	for i := 0; i < n; i++ {
		name := string(rune('a' + i))
		require.NoError(t, os.WriteFile(filepath.Join(imgDir, name+".png"), data, 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(annDir, name+".xml"), []byte(halvesVOC), 0o600))
	}
	return root
}

func exactScenario(name string) Scenario {
	return NewScenarioBuilder(name).WithSigma(0).WithMinSize(20).Build()
}

func TestNewSuite(t *testing.T) {
	suite := NewSuite(NewSuiteArgs{OutputPath: "./test_output"})

	assert.NotNil(t, suite)
	assert.Equal(t, "./test_output", suite.outputDir)
	assert.Equal(t, runtime.NumCPU(), suite.concurrency)
	assert.NotNil(t, suite.logger)
	assert.Empty(t, suite.scenarios)
	assert.Empty(t, suite.results)
}

func TestScenarioBuilder(t *testing.T) {
	scenario := NewScenarioBuilder("test_scenario").
		WithSigma(0.8).
		WithC(300).
		WithMinSize(20).
		WithMaxDimension(640).
		WithIterations(3).
		WithWarmupRuns(1).
		Build()

	assert.Equal(t, Scenario{
		Name:         "test_scenario",
		Sigma:        0.8,
		C:            300,
		MinSize:      20,
		MaxDimension: 640,
		Iterations:   3,
		WarmupRuns:   1,
	}, scenario)

	defaults := NewScenarioBuilder("defaults").Build()
	assert.Equal(t, 0.5, defaults.Sigma)
	assert.Equal(t, float32(500), defaults.C)
	assert.Equal(t, 50, defaults.MinSize)
}

func TestAddScenario(t *testing.T) {
	suite := NewSuite(NewSuiteArgs{})
	scenario := NewScenarioBuilder("test").Build()

	suite.AddScenario(scenario)

	assert.Len(t, suite.scenarios, 1)
	assert.Equal(t, scenario, suite.scenarios[0])
}

func TestPredefinedScenarios(t *testing.T) {
	predefined := &PredefinedScenarios{}

	quick := predefined.GetQuickScenarios()
	assert.Len(t, quick.Scenarios, 3)
	assert.Equal(t, "Quick Parameter Test", quick.Name)

	sweep := predefined.GetSweepScenarios([]float64{0.5, 0.8}, []float32{300, 500}, []int{20, 50})
	assert.Len(t, sweep.Scenarios, 8)
	names := make(map[string]bool)
	for _, s := range sweep.Scenarios {
		names[s.Name] = true
	}
	assert.Len(t, names, 8)
	assert.True(t, names["sweep_s0.8_c300_m20"])

	resolution := predefined.GetResolutionComparisonScenarios([]int{256, 512})
	require.Len(t, resolution.Scenarios, 2)
	assert.Equal(t, 512, resolution.Scenarios[1].MaxDimension)
	assert.Contains(t, resolution.Name, "Resolution Comparison")
}

func TestScenarioSetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.json")
	set := (&PredefinedScenarios{}).GetQuickScenarios()

	require.NoError(t, SaveScenarioSet(set, path))
	loaded, err := LoadScenarioSet(path)
	require.NoError(t, err)
	assert.Equal(t, set, loaded)

	_, err = LoadScenarioSet(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories": ["cat", "dog"], "max_concurrency": 4}`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, cfg.Categories)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, DefaultConfig().OutputDir, cfg.OutputDir)

	saved := filepath.Join(dir, "saved.json")
	require.NoError(t, cfg.SaveConfig(saved))
	again, err := LoadConfig(saved)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestRunScenarioEmptyCorpus(t *testing.T) {
	suite := NewSuite(NewSuiteArgs{})

	_, err := suite.RunScenario(context.Background(), exactScenario("empty"))
	assert.True(t, errors.Is(err, ErrNoSamples))
}

func TestRunScenario(t *testing.T) {
	suite := NewSuite(NewSuiteArgs{Concurrency: 2})
	n, err := suite.LoadDataset(writeDataset(t, 3), "obj")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	scenario := exactScenario("exact")
	scenario.Iterations = 2
	scenario.WarmupRuns = 1
	metrics, err := suite.RunScenario(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, scenario, metrics.Scenario)
	assert.Equal(t, 6, metrics.Images)
	assert.Zero(t, metrics.Errors)
	assert.Equal(t, 6, metrics.Quality.Evaluated)
	assert.InDelta(t, 1.0, metrics.Quality.MeanABO, 1e-12)
	assert.InDelta(t, 0.0, metrics.Quality.StdABO, 1e-12)
	assert.Equal(t, 1.0, metrics.Quality.MatchRate)
	assert.Equal(t, 2.0, metrics.MeanRegions)
	assert.Greater(t, metrics.ImagesPerSecond, 0.0)
	assert.Equal(t, 2, metrics.CPUStats.Concurrency)
	assert.Equal(t, int64(6), metrics.Stages["segment"].Count)
	assert.Equal(t, int64(6), metrics.Stages["evaluate"].Count)
}

func TestRunScenarioCountsErrors(t *testing.T) {
	root := writeDataset(t, 1)
	broken := filepath.Join(root, util.ImagesDir, "obj", "z.png")
	require.NoError(t, os.WriteFile(broken, []byte("not a png"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, util.AnnotationsDir, "obj", "z.xml"), []byte(halvesVOC), 0o600))

	suite := NewSuite(NewSuiteArgs{Concurrency: 1})
	_, err := suite.LoadDataset(root, "obj")
	require.NoError(t, err)

	metrics, err := suite.RunScenario(context.Background(), exactScenario("broken"))
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.Images)
	assert.Equal(t, 1, metrics.Errors)
	assert.Equal(t, 0.5, metrics.ErrorRate)
	assert.Equal(t, 1, metrics.Quality.Evaluated)
}

func TestRunScenarioCanceled(t *testing.T) {
	suite := NewSuite(NewSuiteArgs{Concurrency: 2})
	_, err := suite.LoadDataset(writeDataset(t, 2), "obj")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = suite.RunScenario(ctx, exactScenario("canceled"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunAllScenariosSavesResults(t *testing.T) {
	out := t.TempDir()
	suite := NewSuite(NewSuiteArgs{OutputPath: out, Concurrency: 2, ReportInterval: time.Millisecond})
	_, err := suite.LoadDataset(writeDataset(t, 2), "obj")
	require.NoError(t, err)

	suite.AddScenario(exactScenario("exact"))
	suite.AddScenario(NewScenarioBuilder("coarse").WithSigma(0).WithC(1e6).WithMinSize(0).Build())
	require.NoError(t, suite.RunAllScenarios(context.Background()))

	results := suite.GetResults()
	require.Len(t, results, 2)

	best, ok := suite.Best()
	require.True(t, ok)
	assert.Equal(t, "exact", best.Scenario.Name)
	assert.Equal(t, 1.0, results[1].MeanRegions)

	csvFiles, err := filepath.Glob(filepath.Join(out, "benchmark_summary_*.csv"))
	require.NoError(t, err)
	require.Len(t, csvFiles, 1)
	f, err := os.Open(csvFiles[0])
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, summaryHeader, records[0])
	assert.Equal(t, "exact", records[1][0])
	assert.Equal(t, "1.0000", records[1][5])

	jsonFiles, err := filepath.Glob(filepath.Join(out, "benchmark_results_*.json"))
	require.NoError(t, err)
	require.Len(t, jsonFiles, 1)
	data, err := os.ReadFile(jsonFiles[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"mean_abo"`))
}

func TestBestWithoutResults(t *testing.T) {
	_, ok := NewSuite(NewSuiteArgs{}).Best()
	assert.False(t, ok)
}

func TestSummarizeQuality(t *testing.T) {
	q := summarizeQuality([]float64{0.5, 1.0}, 3, 4)
	assert.Equal(t, 2, q.Evaluated)
	assert.InDelta(t, 0.75, q.MeanABO, 1e-12)
	assert.InDelta(t, math.Sqrt(0.125), q.StdABO, 1e-12)
	assert.Equal(t, 0.5, q.MinABO)
	assert.Equal(t, 1.0, q.MaxABO)
	assert.Equal(t, 0.75, q.MatchRate)

	single := summarizeQuality([]float64{0.4}, 0, 1)
	assert.Equal(t, 0.4, single.MeanABO)
	assert.Zero(t, single.StdABO)

	assert.Equal(t, QualityMetrics{}, summarizeQuality(nil, 0, 0))
}
