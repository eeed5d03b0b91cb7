// Package wheel is the Quality Wheel scoring engine: it checks a practice's
// sub-scores against the rubric, aggregates them per criterion and overall,
// classifies the result and attaches improvement recommendations.
package wheel

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/recommend"
	"github.com/aigents/quality-wheel/internal/rubric"
	"github.com/aigents/quality-wheel/internal/utils"
)

// Recommender turns an evaluated result into improvement suggestions.
type Recommender interface {
	Generate(snap *rubric.Snapshot, result *models.ValidationResult) []string
}

// Evaluator runs practices against a shared rubric. It holds no per-call
// state, so one Evaluator may be used from many goroutines at once.
type Evaluator struct {
	rubric      *rubric.Config
	thresholds  DecisionThresholds
	recommender Recommender
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithDecisionThresholds overrides the approve/review boundaries.
func WithDecisionThresholds(t DecisionThresholds) Option {
	return func(e *Evaluator) {
		e.thresholds = t
	}
}

// WithRecommender replaces the default recommendation engine.
func WithRecommender(r Recommender) Option {
	return func(e *Evaluator) {
		e.recommender = r
	}
}

// WithLogger sets the evaluator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithClock sets the time source used for EvaluatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// NewEvaluator creates an Evaluator reading from cfg.
func NewEvaluator(cfg *rubric.Config, opts ...Option) *Evaluator {
	e := &Evaluator{
		rubric:      cfg,
		thresholds:  DefaultDecisionThresholds(),
		recommender: recommend.NewEngine(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rubric returns the config the evaluator reads from.
func (e *Evaluator) Rubric() *rubric.Config {
	return e.rubric
}

// Thresholds returns the decision boundaries in use.
func (e *Evaluator) Thresholds() DecisionThresholds {
	return e.thresholds
}

// EvaluatePractice scores one practice against the current rubric snapshot.
// Invalid input and configuration errors abort the call; no partial result
// is returned.
func (e *Evaluator) EvaluatePractice(ctx context.Context, input *models.PracticeInput) (*models.ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}

	snap := e.rubric.Snapshot()
	result, err := Evaluate(snap, input, e.thresholds)
	if err != nil {
		e.logger.Debug("practice evaluation failed", "practice", practiceID(input), "error", err)
		return nil, err
	}

	result.EvaluatedAt = e.now().UTC()
	if e.recommender != nil {
		result.Recommendations = e.recommender.Generate(snap, result)
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}

	utils.ResultToSlog(e.logger, result)
	return result, nil
}

// Evaluate is the pure core of EvaluatePractice: a function of the rubric
// snapshot, the input and the decision thresholds. Recommendations are left
// empty.
func Evaluate(snap *rubric.Snapshot, input *models.PracticeInput, t DecisionThresholds) (*models.ValidationResult, error) {
	if input == nil {
		return nil, &models.InvalidInputError{Reason: "practice input is nil"}
	}
	if err := checkKnownCriteria(snap, input); err != nil {
		return nil, err
	}

	result := &models.ValidationResult{
		PracticeID:      input.ID,
		Title:           input.Title,
		ValidScores:     make(map[string][]models.SubScoreResult),
		InvalidScores:   make(map[string][]models.SubScoreResult),
		MissingRequired: []string{},
		Criteria:        make([]models.CriterionResult, 0, len(snap.Criteria)),
		Recommendations: []string{},
		RubricVersion:   snap.Version,
	}

	for i := range snap.Criteria {
		spec := &snap.Criteria[i]
		cr, err := AggregateCriterion(spec, input.Scores[spec.Code])
		if err != nil {
			return nil, err
		}
		result.Criteria = append(result.Criteria, cr)

		if valid := cr.Valid(); len(valid) > 0 {
			result.ValidScores[spec.Code] = valid
		}
		if invalid := cr.Invalid(); len(invalid) > 0 {
			result.InvalidScores[spec.Code] = invalid
		}
		for _, sr := range cr.SubResults {
			if sr.Required && !sr.IsValid {
				result.MissingRequired = append(result.MissingRequired, models.SubCriterionID(spec.Code, sr.Name))
			}
		}
	}

	score, defined := overallScore(result.Criteria, snap.CriterionWeights)
	result.FinalScore = score
	if !defined {
		result.Decision = models.DecisionNeedsImprovement
	} else {
		result.Decision = Classify(score, result.MissingRequired, t)
	}
	return result, nil
}

// overallScore averages the defined criterion scores, weighted when the
// rubric carries criterion weights. It reports false when no criterion has a
// score.
func overallScore(criteria []models.CriterionResult, weights map[string]float64) (float64, bool) {
	var (
		sum, weightSum float64
		plain          float64
		n              int
	)
	for _, c := range criteria {
		if c.FinalScore == nil {
			continue
		}
		n++
		plain += *c.FinalScore
		if len(weights) > 0 {
			w := weights[c.Code]
			sum += *c.FinalScore * w
			weightSum += w
		}
	}
	if n == 0 {
		return 0, false
	}

	score := plain / float64(n)
	if weightSum > 0 {
		score = sum / weightSum
	}
	return clampScore(models.Round2(score)), true
}

func clampScore(v float64) float64 {
	switch {
	case v < rubric.MinScore:
		return rubric.MinScore
	case v > rubric.MaxScore:
		return rubric.MaxScore
	default:
		return v
	}
}

func checkKnownCriteria(snap *rubric.Snapshot, input *models.PracticeInput) error {
	codes := make([]string, 0, len(input.Scores))
	for code := range input.Scores {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if _, ok := snap.Criterion(code); !ok {
			return &models.InvalidInputError{Criterion: code, Reason: "unknown criterion"}
		}
	}
	return nil
}

func practiceID(input *models.PracticeInput) string {
	if input == nil {
		return ""
	}
	return input.ID
}
