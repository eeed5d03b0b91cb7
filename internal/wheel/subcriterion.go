package wheel

import (
	"fmt"
	"math"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/rubric"
)

// EvaluateSubCriterion checks one raw score against its sub-criterion spec.
// A nil input or nil score yields an invalid, missing result; a score outside
// [0,10] is rejected rather than clamped.
func EvaluateSubCriterion(criterion string, spec rubric.SubCriterionSpec, in *models.SubScoreInput) (models.SubScoreResult, error) {
	res := models.SubScoreResult{
		Name:      spec.Name,
		Threshold: spec.MinThreshold,
		Weight:    spec.Weight,
		Required:  spec.Required,
	}
	if in != nil {
		res.Details = in.Details
	}

	if in == nil || in.Score == nil {
		res.Missing = true
		res.Explanation = "no score provided"
		return res, nil
	}

	score := *in.Score
	if math.IsNaN(score) || score < rubric.MinScore || score > rubric.MaxScore {
		return models.SubScoreResult{}, &models.InvalidInputError{
			Criterion:    criterion,
			SubCriterion: spec.Name,
			Value:        score,
			Reason:       "score must be within [0, 10]",
		}
	}

	res.Score = score
	res.IsValid = score >= spec.MinThreshold
	res.Explanation = explain(score, spec)
	return res, nil
}

func explain(score float64, spec rubric.SubCriterionSpec) string {
	margin := score - spec.MinThreshold
	if score >= spec.MinThreshold {
		return fmt.Sprintf("score %.2f meets threshold %.2f (+%.2f)", score, spec.MinThreshold, margin)
	}
	kind := "threshold"
	if spec.Required {
		kind = "required threshold"
	}
	return fmt.Sprintf("score %.2f below %s %.2f (%.2f)", score, kind, spec.MinThreshold, margin)
}
