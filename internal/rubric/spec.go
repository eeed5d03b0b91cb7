// Package rubric defines the Quality Wheel rubric: the criteria, their
// weighted sub-criteria and thresholds, and the process-wide Config that
// evaluations read snapshots from.
package rubric

import (
	"fmt"
	"math"

	"github.com/aigents/quality-wheel/internal/models"
)

const (
	// DefaultMinThreshold is the pass threshold used when a sub-criterion does not set one.
	DefaultMinThreshold = 6.0

	// WeightTolerance is the allowed deviation of a criterion's weight sum from 1.0.
	WeightTolerance = 1e-6

	MinScore = 0.0
	MaxScore = 10.0
)

// SubCriterionSpec is a weighted, thresholded facet of a criterion.
type SubCriterionSpec struct {
	Name         string  `yaml:"name" json:"name"`
	Weight       float64 `yaml:"weight" json:"weight"`
	MinThreshold float64 `yaml:"min_threshold" json:"min_threshold"`
	Required     bool    `yaml:"required" json:"required"`
}

// CriterionSpec is one evaluation axis. SubCriteria order is kept stable so
// recommendations come out in the same order on every call.
type CriterionSpec struct {
	Code        string             `yaml:"code" json:"code"`
	Name        string             `yaml:"name" json:"name"`
	SubCriteria []SubCriterionSpec `yaml:"sub_criteria" json:"sub_criteria"`
}

// WeightSum returns the sum of the configured sub-criterion weights.
func (c *CriterionSpec) WeightSum() float64 {
	sum := 0.0
	for _, s := range c.SubCriteria {
		sum += s.Weight
	}
	return sum
}

// SubCriterion looks up a sub-criterion by name.
func (c *CriterionSpec) SubCriterion(name string) (SubCriterionSpec, bool) {
	i := c.indexOf(name)
	if i < 0 {
		return SubCriterionSpec{}, false
	}
	return c.SubCriteria[i], true
}

func (c *CriterionSpec) indexOf(name string) int {
	for i, s := range c.SubCriteria {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks the criterion's shape and the weight-sum invariant.
func (c *CriterionSpec) Validate() error {
	if c.Code == "" {
		return &models.ConfigurationError{Reason: "criterion code is empty"}
	}
	if len(c.SubCriteria) == 0 {
		return &models.ConfigurationError{Criterion: c.Code, Reason: "criterion has no sub-criteria"}
	}

	seen := make(map[string]bool, len(c.SubCriteria))
	for _, s := range c.SubCriteria {
		if s.Name == "" {
			return &models.ConfigurationError{Criterion: c.Code, Reason: "sub-criterion name is empty"}
		}
		if seen[s.Name] {
			return &models.ConfigurationError{Criterion: c.Code, SubCriterion: s.Name, Reason: "duplicate sub-criterion name"}
		}
		seen[s.Name] = true

		if math.IsNaN(s.Weight) || s.Weight < 0 || s.Weight > 1 {
			return &models.ConfigurationError{Criterion: c.Code, SubCriterion: s.Name, Value: s.Weight, Reason: "weight must be within [0, 1]"}
		}
		if math.IsNaN(s.MinThreshold) || s.MinThreshold < MinScore || s.MinThreshold > MaxScore {
			return &models.ConfigurationError{Criterion: c.Code, SubCriterion: s.Name, Value: s.MinThreshold, Reason: "threshold must be within [0, 10]"}
		}
	}

	if sum := c.WeightSum(); math.Abs(sum-1.0) > WeightTolerance {
		return &models.ConfigurationError{
			Criterion: c.Code,
			Value:     fmt.Sprintf("%.6f", sum),
			Reason:    "sub-criterion weights must sum to 1.0",
		}
	}
	return nil
}

func (c CriterionSpec) clone() CriterionSpec {
	c.SubCriteria = append([]SubCriterionSpec(nil), c.SubCriteria...)
	return c
}
