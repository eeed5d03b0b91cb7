package rubric

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/aigents/quality-wheel/internal/models"
)

// Snapshot is an immutable view of the rubric at one version. Evaluations
// read a single Snapshot for their whole run; callers must not modify it.
type Snapshot struct {
	Version  uint64          `json:"version" yaml:"-"`
	Criteria []CriterionSpec `json:"criteria" yaml:"criteria"`
	// CriterionWeights optionally weights criteria against each other when
	// computing the overall score. Empty means an unweighted mean.
	CriterionWeights map[string]float64 `json:"criterion_weights,omitempty" yaml:"criterion_weights,omitempty"`
}

// Criterion looks up a criterion by code.
func (s *Snapshot) Criterion(code string) (*CriterionSpec, bool) {
	for i := range s.Criteria {
		if s.Criteria[i].Code == code {
			return &s.Criteria[i], true
		}
	}
	return nil, false
}

// Codes returns the criterion codes in rubric order.
func (s *Snapshot) Codes() []string {
	codes := make([]string, 0, len(s.Criteria))
	for _, c := range s.Criteria {
		codes = append(codes, c.Code)
	}
	return codes
}

// Validate checks every criterion and the optional criterion weights.
func (s *Snapshot) Validate() error {
	if len(s.Criteria) == 0 {
		return &models.ConfigurationError{Reason: "rubric has no criteria"}
	}
	seen := make(map[string]bool, len(s.Criteria))
	for i := range s.Criteria {
		c := &s.Criteria[i]
		if seen[c.Code] {
			return &models.ConfigurationError{Criterion: c.Code, Reason: "duplicate criterion code"}
		}
		seen[c.Code] = true
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return validateCriterionWeights(s.CriterionWeights, s.Codes(), seen)
}

// validateCriterionWeights requires a non-empty weight map to name every
// criterion, so no criterion silently drops out of the overall score.
func validateCriterionWeights(weights map[string]float64, codes []string, known map[string]bool) error {
	if len(weights) == 0 {
		return nil
	}
	total := 0.0
	for code, w := range weights {
		if !known[code] {
			return &models.ConfigurationError{Criterion: code, Reason: "criterion weight set for unknown criterion"}
		}
		if math.IsNaN(w) || w < 0 {
			return &models.ConfigurationError{Criterion: code, Value: w, Reason: "criterion weight must be non-negative"}
		}
		total += w
	}
	for _, code := range codes {
		if _, ok := weights[code]; !ok {
			return &models.ConfigurationError{Criterion: code, Reason: "criterion weights must cover every criterion; no weight set"}
		}
	}
	if total <= 0 {
		return &models.ConfigurationError{Reason: "criterion weights must not all be zero"}
	}
	return nil
}

// Clone returns a deep copy that may be freely modified.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Version:  s.Version,
		Criteria: make([]CriterionSpec, len(s.Criteria)),
	}
	for i, c := range s.Criteria {
		out.Criteria[i] = c.clone()
	}
	if len(s.CriterionWeights) > 0 {
		out.CriterionWeights = make(map[string]float64, len(s.CriterionWeights))
		for k, v := range s.CriterionWeights {
			out.CriterionWeights[k] = v
		}
	}
	return out
}

// ThresholdUpdate carries the optional fields of an AdjustThreshold call.
// Nil fields are left unchanged.
type ThresholdUpdate struct {
	MinValue *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	Weight   *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Required *bool    `json:"required,omitempty" yaml:"required,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ThresholdUpdate) Empty() bool {
	return u.MinValue == nil && u.Weight == nil && u.Required == nil
}

// Config is the process-wide rubric. Reads are lock-free snapshot loads;
// mutations are serialized, validated on a copy, and swapped in atomically,
// so a rejected mutation never leaves partial state behind.
type Config struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

// Option configures a Config.
type Option func(*Config)

// WithLogger sets the logger used for mutation events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// Default returns a Config holding the built-in six-criterion rubric.
func Default(opts ...Option) *Config {
	c, err := New(DefaultCriteria(), nil, opts...)
	if err != nil {
		panic(fmt.Sprintf("built-in rubric is invalid: %v", err))
	}
	return c
}

// New builds a Config from the given criteria and optional criterion weights.
func New(criteria []CriterionSpec, criterionWeights map[string]float64, opts ...Option) (*Config, error) {
	c := &Config{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	snap := (&Snapshot{Criteria: criteria, CriterionWeights: criterionWeights}).Clone()
	snap.Version = 1
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	c.current.Store(snap)
	return c, nil
}

// Snapshot returns the current rubric. The returned value is shared and
// must be treated as read-only; use Clone to get a modifiable copy.
func (c *Config) Snapshot() *Snapshot {
	return c.current.Load()
}

// Version returns the version of the current snapshot.
func (c *Config) Version() uint64 {
	return c.current.Load().Version
}

// AdjustThreshold updates one sub-criterion in place. The whole criterion is
// re-validated after the change; if the weight-sum invariant (or any other
// check) fails, the mutation is rejected and the prior rubric stays in effect.
func (c *Config) AdjustThreshold(criterion, subCriterion string, u ThresholdUpdate) error {
	return c.mutate(func(next *Snapshot) error {
		spec, ok := next.Criterion(criterion)
		if !ok {
			return &models.InvalidInputError{Criterion: criterion, Reason: "unknown criterion"}
		}
		i := spec.indexOf(subCriterion)
		if i < 0 {
			return &models.InvalidInputError{Criterion: criterion, SubCriterion: subCriterion, Reason: "unknown sub-criterion"}
		}
		if u.Empty() {
			return errNoChange
		}

		s := &spec.SubCriteria[i]
		if u.MinValue != nil {
			s.MinThreshold = *u.MinValue
		}
		if u.Weight != nil {
			s.Weight = *u.Weight
		}
		if u.Required != nil {
			s.Required = *u.Required
		}
		return spec.Validate()
	}, "criterion", criterion, "sub_criterion", subCriterion)
}

// SetWeights replaces several sub-criterion weights of one criterion in a
// single mutation, which is the only way to rebalance weights without
// passing through a state that violates the weight-sum invariant.
func (c *Config) SetWeights(criterion string, weights map[string]float64) error {
	return c.mutate(func(next *Snapshot) error {
		spec, ok := next.Criterion(criterion)
		if !ok {
			return &models.InvalidInputError{Criterion: criterion, Reason: "unknown criterion"}
		}
		if len(weights) == 0 {
			return errNoChange
		}
		for name, w := range weights {
			i := spec.indexOf(name)
			if i < 0 {
				return &models.InvalidInputError{Criterion: criterion, SubCriterion: name, Reason: "unknown sub-criterion"}
			}
			spec.SubCriteria[i].Weight = w
		}
		return spec.Validate()
	}, "criterion", criterion)
}

// PutCriterion adds a new criterion at the end of the rubric, or replaces the
// criterion with the same code in place.
func (c *Config) PutCriterion(spec CriterionSpec) error {
	return c.mutate(func(next *Snapshot) error {
		if err := spec.Validate(); err != nil {
			return err
		}
		if existing, ok := next.Criterion(spec.Code); ok {
			*existing = spec.clone()
			return nil
		}
		next.Criteria = append(next.Criteria, spec.clone())
		return nil
	}, "criterion", spec.Code)
}

// SetCriterionWeights sets the criterion-level weights used for the overall
// score. A nil or empty map restores the unweighted mean.
func (c *Config) SetCriterionWeights(weights map[string]float64) error {
	return c.mutate(func(next *Snapshot) error {
		next.CriterionWeights = nil
		if len(weights) > 0 {
			next.CriterionWeights = make(map[string]float64, len(weights))
			for k, v := range weights {
				next.CriterionWeights[k] = v
			}
		}
		return nil
	})
}

// errNoChange short-circuits a mutation that would not modify anything.
var errNoChange = errors.New("no change")

func (c *Config) mutate(apply func(next *Snapshot) error, attrs ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.current.Load()
	next := prev.Clone()
	if err := apply(next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		c.logger.Debug("rubric mutation rejected", append(attrs, "error", err)...)
		return err
	}
	if err := next.Validate(); err != nil {
		c.logger.Debug("rubric mutation rejected", append(attrs, "error", err)...)
		return err
	}

	next.Version = prev.Version + 1
	c.current.Store(next)
	c.logger.Info("rubric updated", append(attrs, "version", next.Version)...)
	return nil
}
