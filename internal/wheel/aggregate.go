package wheel

import (
	"sort"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/rubric"
)

// AggregateCriterion evaluates every sub-criterion of spec and combines the
// valid ones into a criterion score. Weights are renormalized over the valid
// subset; with no valid sub-criterion the score is nil and the criterion does
// not take part in the overall score.
func AggregateCriterion(spec *rubric.CriterionSpec, scores map[string]models.SubScoreInput) (models.CriterionResult, error) {
	if err := spec.Validate(); err != nil {
		return models.CriterionResult{}, err
	}
	if err := checkKnownSubCriteria(spec, scores); err != nil {
		return models.CriterionResult{}, err
	}

	res := models.CriterionResult{
		Code:       spec.Code,
		Name:       spec.Name,
		SubResults: make([]models.SubScoreResult, 0, len(spec.SubCriteria)),
	}

	var (
		weighted   float64
		weightSum  float64
		plainSum   float64
		validCount int
	)
	for _, sc := range spec.SubCriteria {
		var in *models.SubScoreInput
		if v, ok := scores[sc.Name]; ok {
			in = &v
		}

		sr, err := EvaluateSubCriterion(spec.Code, sc, in)
		if err != nil {
			return models.CriterionResult{}, err
		}
		res.SubResults = append(res.SubResults, sr)

		if !sr.IsValid {
			if sr.Required {
				res.HasMissingRequired = true
			}
			continue
		}
		weighted += sr.Score * sr.Weight
		weightSum += sr.Weight
		plainSum += sr.Score
		validCount++
	}

	switch {
	case validCount == 0:
	case weightSum > 0:
		score := models.Round2(weighted / weightSum)
		res.FinalScore = &score
	default:
		// Every valid sub-criterion carries zero weight.
		score := models.Round2(plainSum / float64(validCount))
		res.FinalScore = &score
	}
	return res, nil
}

func checkKnownSubCriteria(spec *rubric.CriterionSpec, scores map[string]models.SubScoreInput) error {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := spec.SubCriterion(name); !ok {
			return &models.InvalidInputError{Criterion: spec.Code, SubCriterion: name, Reason: "unknown sub-criterion"}
		}
	}
	return nil
}
