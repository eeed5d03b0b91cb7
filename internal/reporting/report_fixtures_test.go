package reporting

import (
	"context"
	"time"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/rubric"
	"github.com/aigents/quality-wheel/internal/wheel"
)

// approvedResult scores every default sub-criterion 8 except the optional
// Q.examples, which is left out.
func approvedResult() *models.ValidationResult {
	in := models.NewPracticeInput("p-approved")
	in.Title = "Prompt library with regression tests"
	for _, c := range rubric.DefaultCriteria() {
		for _, s := range c.SubCriteria {
			if c.Code == "Q" && s.Name == "examples" {
				continue
			}
			in.SetScore(c.Code, s.Name, 8)
		}
	}
	return mustEvaluate(in)
}

// weakResult scores only two Quality sub-criteria, one below threshold.
func weakResult() *models.ValidationResult {
	in := models.NewPracticeInput("p-weak").
		SetScore("Q", "fullness", 4).
		SetScore("Q", "structure", 7)
	return mustEvaluate(in)
}

func mustEvaluate(in *models.PracticeInput) *models.ValidationResult {
	eval := wheel.NewEvaluator(rubric.Default(), wheel.WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	}))
	r, err := eval.EvaluatePractice(context.Background(), in)
	if err != nil {
		panic(err)
	}
	return r
}
