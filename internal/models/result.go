package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Decision is the classification produced for an evaluated practice.
type Decision string

const (
	DecisionApprove          Decision = "approve"
	DecisionReview           Decision = "review"
	DecisionReject           Decision = "reject"
	DecisionNeedsImprovement Decision = "needs_improvement"
)

func (d Decision) String() string {
	return string(d)
}

// Approved reports whether the decision lets the practice through without changes.
func (d Decision) Approved() bool {
	return d == DecisionApprove
}

// Rank orders decisions from worst to best: reject, needs_improvement,
// review, approve. Unknown decisions rank lowest.
func (d Decision) Rank() int {
	switch d {
	case DecisionApprove:
		return 3
	case DecisionReview:
		return 2
	case DecisionNeedsImprovement:
		return 1
	default:
		return 0
	}
}

// ParseDecision converts an interop string to a Decision.
func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReview:
		return DecisionReview, nil
	case DecisionReject:
		return DecisionReject, nil
	case DecisionNeedsImprovement:
		return DecisionNeedsImprovement, nil
	default:
		return "", fmt.Errorf("invalid decision %q: must be approve, review, reject, or needs_improvement", s)
	}
}

// SubScoreResult is the outcome of checking one sub-criterion score against its threshold.
type SubScoreResult struct {
	Name        string         `json:"name"`
	Score       float64        `json:"score"`
	Threshold   float64        `json:"threshold"`
	Weight      float64        `json:"weight"`
	Required    bool           `json:"required"`
	IsValid     bool           `json:"is_valid"`
	Missing     bool           `json:"missing,omitempty"`
	Explanation string         `json:"explanation"`
	Details     map[string]any `json:"details,omitempty"`
}

// CriterionResult aggregates the sub-criterion results of one criterion.
type CriterionResult struct {
	Code string `json:"code"`
	Name string `json:"name"`
	// FinalScore is nil when no sub-criterion of the criterion is valid.
	FinalScore         *float64         `json:"final_score"`
	SubResults         []SubScoreResult `json:"sub_results"`
	HasMissingRequired bool             `json:"has_missing_required"`
}

// Valid returns the sub-results that met their threshold, in rubric order.
func (c *CriterionResult) Valid() []SubScoreResult {
	var out []SubScoreResult
	for _, r := range c.SubResults {
		if r.IsValid {
			out = append(out, r)
		}
	}
	return out
}

// Invalid returns the sub-results that failed or were absent, in rubric order.
func (c *CriterionResult) Invalid() []SubScoreResult {
	var out []SubScoreResult
	for _, r := range c.SubResults {
		if !r.IsValid {
			out = append(out, r)
		}
	}
	return out
}

// ValidationResult is the complete outcome of evaluating one practice.
type ValidationResult struct {
	PracticeID      string                      `json:"practice_id,omitempty"`
	Title           string                      `json:"title,omitempty"`
	ValidScores     map[string][]SubScoreResult `json:"valid_scores"`
	InvalidScores   map[string][]SubScoreResult `json:"invalid_scores"`
	MissingRequired []string                    `json:"missing_required"`
	Criteria        []CriterionResult           `json:"criteria"`
	FinalScore      float64                     `json:"final_score"`
	Decision        Decision                    `json:"decision"`
	Recommendations []string                    `json:"recommendations"`
	RubricVersion   uint64                      `json:"rubric_version"`
	EvaluatedAt     time.Time                   `json:"evaluated_at"`
}

// Criterion returns the criterion result with the given code, if present.
func (r *ValidationResult) Criterion(code string) (*CriterionResult, bool) {
	for i := range r.Criteria {
		if r.Criteria[i].Code == code {
			return &r.Criteria[i], true
		}
	}
	return nil, false
}

// InvalidCount returns the number of present-but-below-threshold sub-criteria.
func (r *ValidationResult) InvalidCount() int {
	n := 0
	for _, subs := range r.InvalidScores {
		for _, s := range subs {
			if !s.Missing {
				n++
			}
		}
	}
	return n
}

// SubCriterionID joins a criterion code and sub-criterion name the way
// identifiers appear in MissingRequired and recommendations.
func SubCriterionID(criterion, subCriterion string) string {
	return criterion + "." + subCriterion
}

// Round2 rounds v to two decimal places. All derived scores are stored at this
// precision so serialized results read back identically.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
