// Package orchestration runs batches of practices through the evaluator
// with bounded concurrency, optional caching and progress reporting.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aigents/quality-wheel/internal/cache"
	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/wheel"
)

// DefaultWorkers is used when no positive worker count is configured.
const DefaultWorkers = 4

// ResultWriter persists each successfully evaluated practice.
type ResultWriter interface {
	Save(result *models.ValidationResult) error
}

// BatchRunner orchestrates the evaluation of many practices.
type BatchRunner struct {
	evaluator *wheel.Evaluator
	workers   int
	logger    *slog.Logger

	// Practice filtering
	filters []string

	// Result caching
	cache        *cache.Cache
	cacheVariant string

	writer ResultWriter

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventBatchStart        EventType = "batch_start"
	EventBatchComplete     EventType = "batch_complete"
	EventPracticeStart     EventType = "practice_start"
	EventPracticeComplete  EventType = "practice_complete"
	EventPracticeCached    EventType = "practice_cached"
	EventPracticeFailed    EventType = "practice_failed"
	EventResultWriteFailed EventType = "result_write_failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType      EventType
	PracticeID     string
	PracticeNum    int
	TotalPractices int
	Decision       models.Decision
	FinalScore     float64
	Err            error
}

// RunnerOption configures a BatchRunner.
type RunnerOption func(*BatchRunner)

// WithWorkers bounds how many practices are evaluated at once.
func WithWorkers(n int) RunnerOption {
	return func(r *BatchRunner) {
		r.workers = n
	}
}

// WithFilters sets glob patterns matched against practice ID and title.
func WithFilters(patterns ...string) RunnerOption {
	return func(r *BatchRunner) {
		r.filters = patterns
	}
}

// WithCache enables result caching. variant distinguishes evaluator settings
// that change results without changing the rubric, such as thresholds.
func WithCache(c *cache.Cache, variant string) RunnerOption {
	return func(r *BatchRunner) {
		r.cache = c
		r.cacheVariant = variant
	}
}

// WithResultWriter saves every evaluated result through w.
func WithResultWriter(w ResultWriter) RunnerOption {
	return func(r *BatchRunner) {
		r.writer = w
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *BatchRunner) {
		r.logger = l
	}
}

// NewBatchRunner creates a new batch runner
func NewBatchRunner(evaluator *wheel.Evaluator, opts ...RunnerOption) *BatchRunner {
	r := &BatchRunner{
		evaluator: evaluator,
		workers:   DefaultWorkers,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.workers <= 0 {
		r.workers = DefaultWorkers
	}
	return r
}

// OnProgress registers a progress listener
func (r *BatchRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *BatchRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run evaluates inputs and returns results in input order. Practices with
// invalid input are recorded as failures and do not stop the batch; a
// configuration error or context cancellation aborts it.
func (r *BatchRunner) Run(ctx context.Context, inputs []*models.PracticeInput) (*BatchOutcome, error) {
	inputs, err := FilterPractices(inputs, r.filters)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	total := len(inputs)
	r.notifyProgress(ProgressEvent{EventType: EventBatchStart, TotalPractices: total})

	type slot struct {
		result *models.ValidationResult
		err    error
	}
	slots := make([]slot, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			id := practiceLabel(in, i)
			r.notifyProgress(ProgressEvent{
				EventType:      EventPracticeStart,
				PracticeID:     id,
				PracticeNum:    i + 1,
				TotalPractices: total,
			})

			result, cached, err := r.evaluate(gctx, in)
			if err != nil {
				r.notifyProgress(ProgressEvent{
					EventType:      EventPracticeFailed,
					PracticeID:     id,
					PracticeNum:    i + 1,
					TotalPractices: total,
					Err:            err,
				})
				if errors.Is(err, models.ErrInvalidInput) {
					slots[i] = slot{err: err}
					return nil
				}
				return fmt.Errorf("evaluating %s: %w", id, err)
			}

			slots[i] = slot{result: result}
			event := EventPracticeComplete
			if cached {
				event = EventPracticeCached
			}
			r.notifyProgress(ProgressEvent{
				EventType:      event,
				PracticeID:     id,
				PracticeNum:    i + 1,
				TotalPractices: total,
				Decision:       result.Decision,
				FinalScore:     result.FinalScore,
			})

			if r.writer != nil {
				if err := r.writer.Save(result); err != nil {
					r.logger.Warn("Failed to save result", "practice", id, "error", err)
					r.notifyProgress(ProgressEvent{
						EventType:  EventResultWriteFailed,
						PracticeID: id,
						Err:        err,
					})
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcome := &BatchOutcome{
		StartedAt: start.UTC(),
		Results:   make([]*models.ValidationResult, 0, total),
		Failures:  []Failure{},
	}
	for i, s := range slots {
		if s.err != nil {
			outcome.Failures = append(outcome.Failures, Failure{
				PracticeID: practiceLabel(inputs[i], i),
				Error:      s.err.Error(),
			})
			continue
		}
		outcome.Results = append(outcome.Results, s.result)
	}
	outcome.Summary = Summarize(outcome.Results, len(outcome.Failures))
	outcome.DurationMs = time.Since(start).Milliseconds()

	r.notifyProgress(ProgressEvent{EventType: EventBatchComplete, TotalPractices: total})
	r.logger.Info("Batch complete",
		"practices", total,
		"approved", outcome.Summary.Approved,
		"failed", outcome.Summary.Failed,
		"durationMs", outcome.DurationMs,
	)
	return outcome, nil
}

// evaluate runs one practice, consulting the cache when configured.
func (r *BatchRunner) evaluate(ctx context.Context, in *models.PracticeInput) (*models.ValidationResult, bool, error) {
	if r.cache == nil || in == nil {
		res, err := r.evaluator.EvaluatePractice(ctx, in)
		return res, false, err
	}

	key, err := cache.Key(r.evaluator.Rubric().Snapshot(), r.cacheVariant, in)
	if err != nil {
		// No cache when the key can't be built
		res, err := r.evaluator.EvaluatePractice(ctx, in)
		return res, false, err
	}
	if cached, found := r.cache.Get(key); found {
		return cached, true, nil
	}

	res, err := r.evaluator.EvaluatePractice(ctx, in)
	if err != nil {
		return nil, false, err
	}
	if err := r.cache.Put(key, res); err != nil {
		r.logger.Warn("Failed to write cache", "practice", res.PracticeID, "error", err)
	}
	return res, false, nil
}

func practiceLabel(in *models.PracticeInput, idx int) string {
	if in != nil && in.ID != "" {
		return in.ID
	}
	return fmt.Sprintf("practice-%d", idx+1)
}
