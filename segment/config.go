package segment

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Config controls segmentation behaviour.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// C scales the size-dependent merge threshold C/|region|. Larger values
	// favour larger, fewer regions. Must be >= 0. Default: 500.
	C float32 `json:"c" yaml:"c"`

	// MinSize is the smallest region kept after the greedy merge; smaller
	// regions are absorbed by a neighbour. 0 disables the pass.
	// Must be >= 0. Default: 50.
	MinSize int `json:"min_size" yaml:"min_size"`
}

// DefaultConfig returns the parameters used for natural photographs of
// roughly 500x375 pixels.
func DefaultConfig() Config {
	return Config{
		C:       500,
		MinSize: 50,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.C < 0 || math32.IsNaN(c.C) || math32.IsInf(c.C, 1) {
		return errors.Wrapf(ErrInvalidConfig, "c must be finite and >= 0, got %v", c.C)
	}
	if c.MinSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "min size must be >= 0, got %d", c.MinSize)
	}
	return nil
}

// threshold is the merge tolerance of a region of the given size before any
// edge has been absorbed into it.
func (c Config) threshold(size int) float32 {
	return c.C / float32(size)
}
