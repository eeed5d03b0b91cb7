package wheel

import (
	"fmt"

	"github.com/aigents/quality-wheel/internal/models"
)

// Default decision boundaries on the 0-10 scale.
const (
	DefaultApproveThreshold = 7.0
	DefaultReviewThreshold  = 5.0
)

// DecisionThresholds are the lower bounds of the approve and review bands.
type DecisionThresholds struct {
	Approve float64 `yaml:"approve" json:"approve"`
	Review  float64 `yaml:"review" json:"review"`
}

// DefaultDecisionThresholds returns the standard 7.0 / 5.0 boundaries.
func DefaultDecisionThresholds() DecisionThresholds {
	return DecisionThresholds{Approve: DefaultApproveThreshold, Review: DefaultReviewThreshold}
}

// Validate checks that review <= approve and both lie on the score scale.
func (t DecisionThresholds) Validate() error {
	if t.Review < 0 || t.Approve > 10 || t.Review > t.Approve {
		return &models.ConfigurationError{
			Value:  fmt.Sprintf("approve=%.2f review=%.2f", t.Approve, t.Review),
			Reason: "decision thresholds must satisfy 0 <= review <= approve <= 10",
		}
	}
	return nil
}

// Classify derives the decision. Missing required sub-criteria win over any score.
func Classify(finalScore float64, missingRequired []string, t DecisionThresholds) models.Decision {
	switch {
	case len(missingRequired) > 0:
		return models.DecisionNeedsImprovement
	case finalScore >= t.Approve:
		return models.DecisionApprove
	case finalScore >= t.Review:
		return models.DecisionReview
	default:
		return models.DecisionReject
	}
}
