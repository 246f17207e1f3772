package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Scenario is one point of a parameter sweep.
type Scenario struct {
	Name         string  `json:"name"          yaml:"name"`
	Sigma        float64 `json:"sigma"         yaml:"sigma"`
	C            float32 `json:"c"             yaml:"c"`
	MinSize      int     `json:"min_size"      yaml:"min_size"`
	MaxDimension int     `json:"max_dimension" yaml:"max_dimension"`
	// Iterations repeats the corpus; timings are averaged over all runs.
	Iterations int `json:"iterations" yaml:"iterations"`
	// WarmupRuns segments that many images before timing starts.
	WarmupRuns int `json:"warmup_runs" yaml:"warmup_runs"`
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a new scenario builder with the default
// segmentation parameters.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Sigma:      0.5,
			C:          500,
			MinSize:    50,
			Iterations: 1,
		},
	}
}

// WithSigma sets the smoothing standard deviation.
func (sb *ScenarioBuilder) WithSigma(sigma float64) *ScenarioBuilder {
	sb.scenario.Sigma = sigma
	return sb
}

// WithC sets the merge constant.
func (sb *ScenarioBuilder) WithC(c float32) *ScenarioBuilder {
	sb.scenario.C = c
	return sb
}

// WithMinSize sets the minimum region size.
func (sb *ScenarioBuilder) WithMinSize(minSize int) *ScenarioBuilder {
	sb.scenario.MinSize = minSize
	return sb
}

// WithMaxDimension sets the downscaling limit.
func (sb *ScenarioBuilder) WithMaxDimension(maxDimension int) *ScenarioBuilder {
	sb.scenario.MaxDimension = maxDimension
	return sb
}

// WithIterations sets the number of passes over the corpus.
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// PredefinedScenarios contains common benchmark scenario sets
type PredefinedScenarios struct{}

// GetQuickScenarios returns the default parameters plus a coarse and a fine
// variant.
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	return &ScenarioSet{
		Name:        "Quick Parameter Test",
		Description: "Default parameters with one coarser and one finer setting",
		Scenarios: []Scenario{
			NewScenarioBuilder("quick_default").Build(),
			NewScenarioBuilder("quick_coarse").WithC(1000).WithMinSize(100).Build(),
			NewScenarioBuilder("quick_fine").WithC(200).WithMinSize(20).Build(),
		},
	}
}

// GetSweepScenarios returns the full grid over the given values.
func (ps *PredefinedScenarios) GetSweepScenarios(sigmas []float64, cs []float32, minSizes []int) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(sigmas)*len(cs)*len(minSizes))

	for _, sigma := range sigmas {
		for _, c := range cs {
			for _, minSize := range minSizes {
				scenario := NewScenarioBuilder(fmt.Sprintf("sweep_s%g_c%g_m%d", sigma, c, minSize)).
					WithSigma(sigma).
					WithC(c).
					WithMinSize(minSize).
					Build()

				scenarios = append(scenarios, scenario)
			}
		}
	}

	return &ScenarioSet{
		Name:        "Parameter Sweep",
		Description: fmt.Sprintf("%d sigma x %d c x %d min size combinations", len(sigmas), len(cs), len(minSizes)),
		Scenarios:   scenarios,
	}
}

// GetResolutionComparisonScenarios runs the default parameters at several
// downscaling limits.
func (ps *PredefinedScenarios) GetResolutionComparisonScenarios(maxDimensions []int) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(maxDimensions))

	for _, dim := range maxDimensions {
		scenario := NewScenarioBuilder(fmt.Sprintf("resolution_%d", dim)).
			WithMaxDimension(dim).
			Build()

		scenarios = append(scenarios, scenario)
	}

	return &ScenarioSet{
		Name:        "Resolution Comparison",
		Description: "Compares quality and speed at different downscaling limits",
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet saves a scenario set to a JSON file
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(scenarioSet, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}

	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenarioSet ScenarioSet
	if err := json.Unmarshal(data, &scenarioSet); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scenario set")
	}

	return &scenarioSet, nil
}

// Config represents the overall benchmark configuration
type Config struct {
	OutputDir      string   `json:"output_dir"`
	DatasetRoot    string   `json:"dataset_root"`
	Categories     []string `json:"categories"`
	MaxConcurrency int      `json:"max_concurrency"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

// DefaultConfig returns a default benchmark configuration
func DefaultConfig() *Config {
	return &Config{
		OutputDir:      "./benchmark_results",
		DatasetRoot:    "./data/VOC2012",
		Categories:     []string{"person"},
		MaxConcurrency: 1,
		TimeoutSeconds: 3600, // 1 hour
	}
}

// SaveConfig saves the benchmark configuration to a JSON file
func (bc *Config) SaveConfig(filename string) error {
	data, err := json.MarshalIndent(bc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// LoadConfig loads benchmark configuration from a JSON file on top of
// DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return config, nil
}
