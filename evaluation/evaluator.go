package evaluation

import (
	"slices"
	"sort"

	"github.com/nvr-ai/go-seg/images"
	"github.com/nvr-ai/go-seg/regions"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNotInitialized is returned by Evaluate before Initialize succeeded.
	ErrNotInitialized = errors.New("evaluator not initialized")

	// ErrEmptyCategory is recorded on a Report when the evaluated category
	// has no ground-truth rows. It is a warning, not a failure.
	ErrEmptyCategory = errors.New("category has no ground-truth rows")
)

// DefaultThreshold is the overlap a region must exceed to be matched.
const DefaultThreshold = 0.5

// Overlap returns the Jaccard overlap of two boxes; see images.Overlap.
func Overlap(a, b images.Rect) float64 {
	return images.Overlap(a, b)
}

// Scope selects which categories receive an ABO entry.
type Scope int

const (
	// ScopeCategory reports ABO for the evaluated category only.
	ScopeCategory Scope = iota
	// ScopeTable reports an ABO key for every category of the unfiltered
	// table; categories other than the evaluated one stay at 0.
	ScopeTable
)

func (s Scope) String() string {
	switch s {
	case ScopeCategory:
		return "category"
	case ScopeTable:
		return "table"
	default:
		return "unknown"
	}
}

// ParseScope converts "category" or "table" to a Scope.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "category":
		return ScopeCategory, nil
	case "table":
		return ScopeTable, nil
	default:
		return 0, errors.Errorf("unknown ABO scope %q", s)
	}
}

// Class is the display class of a region after evaluation.
type Class string

const (
	// Unmatched regions are drawn red.
	Unmatched Class = "r"
	// Matched regions are drawn green.
	Matched Class = "g"
)

// Match is a (region, overlap) pair. Label is empty when no region has been
// chosen.
type Match struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// RowResult holds both best matches for one ground-truth row.
type RowResult struct {
	Row Row `json:"row"`
	// Best is the region holding the highest overlap above the threshold.
	Best Match `json:"best"`
	// Overall is the region with the highest overlap of any value.
	Overall Match `json:"overall"`
}

// Report is the outcome of one evaluation.
type Report struct {
	Category string             `json:"category"`
	Rows     []RowResult        `json:"rows"`
	Classes  map[string]Class   `json:"classes"`
	ABO      map[string]float64 `json:"abo"`
	Warnings []error            `json:"-"`
}

// Matched returns the labels classified Matched, in ascending order.
func (r *Report) Matched() []string {
	out := make([]string, 0, len(r.Classes))
	for label, c := range r.Classes {
		if c == Matched {
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

// State is the lifecycle position of an Evaluator.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateEvaluated
)

func (s State) String() string {
	return [...]string{"uninitialized", "initialized", "evaluated"}[s]
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for warnings and verbose comparisons.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithScope sets the ABO scope.
func WithScope(scope Scope) Option {
	return func(e *Evaluator) { e.scope = scope }
}

// WithThreshold sets the match threshold; the default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(e *Evaluator) { e.threshold = threshold }
}

// Evaluator matches region boxes from a tracker against ground-truth rows.
type Evaluator struct {
	tracker   *regions.Tracker
	logger    *zap.Logger
	scope     Scope
	threshold float64

	state    State
	category string
	rows     Table
	keys     []string
	warnings []error
}

// NewEvaluator creates an uninitialized evaluator over the regions of
// tracker.
//
// Arguments:
// - tracker: Region bounds; its label order fixes the comparison order.
// - opts: Logger, scope and threshold options.
//
// Returns:
// - The evaluator.
//
// @example
// ev := evaluation.NewEvaluator(tracker, evaluation.WithLogger(logger))
// if err := ev.Initialize(table, "cat"); err != nil { ... }
// report, err := ev.Evaluate(false)
func NewEvaluator(tracker *regions.Tracker, opts ...Option) *Evaluator {
	e := &Evaluator{
		tracker:   tracker,
		logger:    zap.NewNop(),
		scope:     ScopeCategory,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Evaluator) State() State {
	return e.state
}

// Initialize selects the rows of table whose category equals category and
// resets all match records. It may be called again to start over.
//
// A category without rows is not an error: the evaluator becomes
// initialized, ErrEmptyCategory is logged and later attached to the report.
func (e *Evaluator) Initialize(table Table, category string) error {
	if e.tracker == nil {
		return errors.New("evaluator has no region tracker")
	}

	e.category = category
	e.rows = table.Filter(category)
	e.warnings = nil

	switch e.scope {
	case ScopeTable:
		e.keys = table.Categories()
	default:
		e.keys = nil
		if len(e.rows) > 0 {
			e.keys = []string{category}
		}
	}

	if len(e.rows) == 0 {
		err := errors.Wrapf(ErrEmptyCategory, "%q", category)
		e.warnings = append(e.warnings, err)
		e.logger.Warn("no ground truth for category", zap.String("category", category))
	}

	e.state = StateInitialized
	e.logger.Debug("evaluator initialized",
		zap.String("category", category),
		zap.Int("rows", len(e.rows)),
		zap.Int("regions", e.tracker.Len()),
		zap.Stringer("scope", e.scope))
	return nil
}

// Evaluate compares every region with every selected row.
//
// For each row, regions are visited in tracker order. A region whose overlap
// exceeds the threshold and the row's current best takes the row's match and
// the previous holder reverts to Unmatched. The highest overlap seen is kept
// independently and feeds the ABO.
//
// Arguments:
// - verbose: Log every comparison at debug level.
//
// Returns:
// - The report, or ErrNotInitialized.
func (e *Evaluator) Evaluate(verbose bool) (*Report, error) {
	if e.state == StateUninitialized {
		return nil, errors.WithStack(ErrNotInitialized)
	}

	labels := e.tracker.Labels()
	rects := make([]images.Rect, len(labels))
	warnings := slices.Clone(e.warnings)
	for i, label := range labels {
		rect, err := e.tracker.Rect(label)
		switch {
		case errors.Is(err, regions.ErrDegenerateRegion):
			warnings = append(warnings, err)
			e.logger.Warn("region has no pixels", zap.String("region", label))
		case err != nil:
			return nil, err
		}
		rects[i] = rect
	}

	report := &Report{
		Category: e.category,
		Rows:     make([]RowResult, len(e.rows)),
		Classes:  make(map[string]Class, len(labels)),
		ABO:      make(map[string]float64, len(e.keys)),
	}
	for _, label := range labels {
		report.Classes[label] = Unmatched
	}

	for i, row := range e.rows {
		res := RowResult{Row: row}
		truth := row.Rect()
		for j, label := range labels {
			o := Overlap(rects[j], truth)
			if verbose {
				e.logger.Debug("overlap",
					zap.Int("row", i),
					zap.String("region", label),
					zap.Stringer("box", rects[j]),
					zap.Float64("overlap", o),
					zap.Float64("best", res.Best.Score))
			}
			if o > e.threshold && o > res.Best.Score {
				if res.Best.Label != "" {
					report.Classes[res.Best.Label] = Unmatched
				}
				report.Classes[label] = Matched
				res.Best = Match{Label: label, Score: o}
			}
			if o > res.Overall.Score {
				res.Overall = Match{Label: label, Score: o}
			}
		}
		report.Rows[i] = res
	}

	for _, key := range e.keys {
		var scores []float64
		for _, res := range report.Rows {
			if res.Row.Category == key {
				scores = append(scores, res.Overall.Score)
			}
		}
		if len(scores) == 0 {
			report.ABO[key] = 0
			continue
		}
		report.ABO[key] = stat.Mean(scores, nil)
	}
	report.Warnings = warnings

	e.state = StateEvaluated
	e.logger.Debug("evaluation finished",
		zap.String("category", e.category),
		zap.Strings("matched", report.Matched()),
		zap.Any("abo", report.ABO))
	return report, nil
}
