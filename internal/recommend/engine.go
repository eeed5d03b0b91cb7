// Package recommend turns evaluated practices into human-readable
// improvement suggestions.
package recommend

import (
	"fmt"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/rubric"
)

// Decision boundaries used for nudges when the engine is not told otherwise.
const (
	defaultApproveBoundary = 7.0
	defaultReviewBoundary  = 5.0

	// NudgeWindow is how close (in points) a criterion score must be to the
	// next boundary to earn a nudge.
	NudgeWindow = 1.0
)

// Engine generates recommendations. The zero value is not usable; call NewEngine.
type Engine struct {
	nudges          bool
	approveBoundary float64
	reviewBoundary  float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithBoundaryNudges enables "close to threshold" suggestions, appended after
// the improvement and missing-required lines.
func WithBoundaryNudges(enabled bool) Option {
	return func(e *Engine) {
		e.nudges = enabled
	}
}

// WithBoundaries sets the approve and review boundaries nudges aim for.
func WithBoundaries(approve, review float64) Option {
	return func(e *Engine) {
		e.approveBoundary = approve
		e.reviewBoundary = review
	}
}

// NewEngine creates a recommendation engine. Nudges are off by default.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		approveBoundary: defaultApproveBoundary,
		reviewBoundary:  defaultReviewBoundary,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate walks criteria in rubric order and sub-criteria in spec order.
// Every present-but-failing sub-criterion yields an "Improve" line, and every
// required sub-criterion that failed or was absent yields a "Missing
// required" line right after it. Output is identical for identical input.
func (e *Engine) Generate(snap *rubric.Snapshot, result *models.ValidationResult) []string {
	recs := []string{}
	if snap == nil || result == nil {
		return recs
	}

	for _, spec := range snap.Criteria {
		cr, ok := result.Criterion(spec.Code)
		if !ok {
			continue
		}
		for _, sr := range cr.SubResults {
			if sr.IsValid {
				continue
			}
			id := models.SubCriterionID(spec.Code, sr.Name)
			if !sr.Missing {
				recs = append(recs, fmt.Sprintf("Improve %s: scored %.2f, needs ≥ %.2f", id, sr.Score, sr.Threshold))
			}
			if sr.Required {
				recs = append(recs, fmt.Sprintf("Missing required: %s", id))
			}
		}
	}

	if e.nudges {
		recs = append(recs, e.boundaryNudges(snap, result)...)
	}
	return recs
}

func (e *Engine) boundaryNudges(snap *rubric.Snapshot, result *models.ValidationResult) []string {
	var out []string
	for _, spec := range snap.Criteria {
		cr, ok := result.Criterion(spec.Code)
		if !ok || cr.FinalScore == nil {
			continue
		}
		score := *cr.FinalScore

		var label string
		var boundary float64
		switch {
		case score >= e.approveBoundary:
			continue
		case score >= e.reviewBoundary:
			label, boundary = "Approve", e.approveBoundary
		default:
			label, boundary = "Review", e.reviewBoundary
		}
		if boundary-score <= NudgeWindow {
			out = append(out, fmt.Sprintf("Close to %s threshold — small gains in %s would change the decision", label, spec.Code))
		}
	}
	return out
}
