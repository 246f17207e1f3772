package segment

import (
	"github.com/nvr-ai/go-seg/images"
	"github.com/pkg/errors"
)

var (
	// ErrInputShape is returned for planes of mismatched dimensions or an
	// image without pixels.
	ErrInputShape = images.ErrInputShape

	// ErrInvalidIndex is returned when a forest operation receives an element
	// outside [0, n).
	ErrInvalidIndex = errors.New("element index out of range")

	// ErrNotRoot is returned when Join receives an element that is not the
	// root of its set.
	ErrNotRoot = errors.New("element is not a root")

	// ErrSameSet is returned when Join is asked to merge a set with itself.
	ErrSameSet = errors.New("elements already share a root")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid segmentation config")
)
