package pipeline

import (
	"math"
	"os"

	"github.com/nvr-ai/go-seg/evaluation"
	"github.com/nvr-ai/go-seg/segment"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Config holds every parameter of a segmentation and evaluation run.
type Config struct {
	// Sigma is the standard deviation of the Gaussian smoothing applied
	// before the graph is built. Default: 0.5.
	Sigma float64 `json:"sigma" yaml:"sigma"`

	// Config carries the merge constant C and the minimum region size.
	segment.Config `yaml:",inline"`

	// MaxDimension downscales larger images before segmentation. 0 keeps
	// the original size.
	MaxDimension int `json:"max_dimension" yaml:"max_dimension"`

	// Category is the ground-truth category evaluated against.
	Category string `json:"category" yaml:"category"`

	// Scope is "category" or "table"; see evaluation.Scope.
	Scope string `json:"scope" yaml:"scope"`

	// Verbose logs every overlap comparison.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// DefaultConfig returns sigma 0.5, C 500, minimum size 50 and the "person"
// category.
func DefaultConfig() Config {
	return Config{
		Sigma:    0.5,
		Config:   segment.DefaultConfig(),
		Category: "person",
		Scope:    evaluation.ScopeCategory.String(),
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Sigma < 0 || math.IsNaN(c.Sigma) || math.IsInf(c.Sigma, 0) {
		return errors.Wrapf(ErrInvalidConfig, "sigma must be finite and >= 0, got %v", c.Sigma)
	}
	if c.MaxDimension < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max dimension must be >= 0, got %d", c.MaxDimension)
	}
	if _, err := evaluation.ParseScope(c.Scope); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return c.Config.Validate()
}

// LoadConfig reads a YAML (or JSON) file on top of DefaultConfig.
//
// Arguments:
// - path: The config file.
//
// Returns:
// - The validated config.
// - An error if the file cannot be read, parsed or validated.
//
// @example
// cfg, err := pipeline.LoadConfig("configs/voc.yaml")
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML.
func SaveConfig(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}
