package orchestration

import (
	"sort"
	"time"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/statistics"
)

// BatchOutcome is the result of one BatchRunner.Run.
type BatchOutcome struct {
	StartedAt  time.Time                  `json:"started_at"`
	DurationMs int64                      `json:"duration_ms"`
	Summary    Summary                    `json:"summary"`
	Results    []*models.ValidationResult `json:"results"`
	Failures   []Failure                  `json:"failures"`
}

// Failure records a practice whose input could not be evaluated.
type Failure struct {
	PracticeID string `json:"practice_id"`
	Error      string `json:"error"`
}

// AddFailures records practices that failed before reaching the runner, such
// as files that could not be decoded, and recomputes the summary. Failures
// are kept sorted by practice ID.
func (o *BatchOutcome) AddFailures(failures ...Failure) {
	if len(failures) == 0 {
		return
	}
	o.Failures = append(o.Failures, failures...)
	sort.SliceStable(o.Failures, func(i, j int) bool {
		return o.Failures[i].PracticeID < o.Failures[j].PracticeID
	})
	o.Summary = Summarize(o.Results, len(o.Failures))
}

// Summary counts decisions across a batch.
type Summary struct {
	Total            int     `json:"total"`
	Approved         int     `json:"approved"`
	Review           int     `json:"review"`
	Rejected         int     `json:"rejected"`
	NeedsImprovement int     `json:"needs_improvement"`
	Failed           int     `json:"failed"`
	MeanScore        float64 `json:"mean_score"`
	StdDev           float64 `json:"std_dev"`
	MinScore         float64 `json:"min_score"`
	MaxScore         float64 `json:"max_score"`

	// MeanCI is a 95% bootstrap interval for MeanScore, set when the batch
	// has at least two results.
	MeanCI *statistics.ConfidenceInterval `json:"mean_ci,omitempty"`
}

// bootstrapSeed keeps MeanCI identical across re-runs of the same batch.
const bootstrapSeed = 1

// AllApproved reports whether every practice in the batch was approved.
func (s Summary) AllApproved() bool {
	return s.Total > 0 && s.Approved == s.Total
}

// Summarize tallies decisions and the mean final score of results.
// failed counts practices that produced no result.
func Summarize(results []*models.ValidationResult, failed int) Summary {
	s := Summary{Total: len(results) + failed, Failed: failed}
	if len(results) == 0 {
		return s
	}
	scores := make([]float64, 0, len(results))
	for _, r := range results {
		scores = append(scores, r.FinalScore)
		switch r.Decision {
		case models.DecisionApprove:
			s.Approved++
		case models.DecisionReview:
			s.Review++
		case models.DecisionReject:
			s.Rejected++
		case models.DecisionNeedsImprovement:
			s.NeedsImprovement++
		}
	}
	d := statistics.Describe(scores)
	s.MeanScore = models.Round2(d.Mean)
	s.StdDev = models.Round2(d.StdDev)
	s.MinScore = d.Min
	s.MaxScore = d.Max
	if len(scores) >= 2 {
		ci := statistics.MeanInterval(scores, 0.95, bootstrapSeed)
		ci.Lower = models.Round2(ci.Lower)
		ci.Upper = models.Round2(ci.Upper)
		ci.Mean = s.MeanScore
		s.MeanCI = &ci
	}
	return s
}
