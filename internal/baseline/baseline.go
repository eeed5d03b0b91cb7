package baseline

import (
	"sort"

	"github.com/aigents/quality-wheel/internal/models"
)

// Change classifies how a practice moved between a baseline result set and a
// current one.
type Change string

const (
	ChangeUnchanged Change = "unchanged"
	ChangeImproved  Change = "improved"
	ChangeRegressed Change = "regressed"
	ChangeAdded     Change = "added"
	ChangeRemoved   Change = "removed"
)

// PracticeDelta pairs the baseline and current results of one practice.
type PracticeDelta struct {
	PracticeID       string             `json:"practice_id"`
	Title            string             `json:"title,omitempty"`
	BaselineScore    *float64           `json:"baseline_score,omitempty"`
	CurrentScore     *float64           `json:"current_score,omitempty"`
	ScoreDelta       float64            `json:"score_delta"`
	BaselineDecision models.Decision    `json:"baseline_decision,omitempty"`
	CurrentDecision  models.Decision    `json:"current_decision,omitempty"`
	DecisionChanged  bool               `json:"decision_changed"`
	Change           Change             `json:"change"`
	CriterionDeltas  map[string]float64 `json:"criterion_deltas,omitempty"`
}

// Comparison is the full diff between two result sets.
type Comparison struct {
	Practices        []PracticeDelta `json:"practices"`
	BaselineMean     float64         `json:"baseline_mean"`
	CurrentMean      float64         `json:"current_mean"`
	MeanDelta        float64         `json:"mean_delta"`
	BaselineApproved int             `json:"baseline_approved"`
	CurrentApproved  int             `json:"current_approved"`
	DecisionChanges  int             `json:"decision_changes"`
	Improved         int             `json:"improved"`
	Regressed        int             `json:"regressed"`
	Added            int             `json:"added"`
	Removed          int             `json:"removed"`
}

// Compare matches results by practice ID and computes per-practice and
// aggregate deltas. Results without a practice ID are ignored.
func Compare(baseline, current []*models.ValidationResult) *Comparison {
	before := index(baseline)
	after := index(current)

	ids := make([]string, 0, len(before)+len(after))
	for id := range before {
		ids = append(ids, id)
	}
	for id := range after {
		if _, ok := before[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	cmp := &Comparison{Practices: make([]PracticeDelta, 0, len(ids))}
	for _, id := range ids {
		d := comparePractice(id, before[id], after[id])
		switch d.Change {
		case ChangeImproved:
			cmp.Improved++
		case ChangeRegressed:
			cmp.Regressed++
		case ChangeAdded:
			cmp.Added++
		case ChangeRemoved:
			cmp.Removed++
		}
		if d.DecisionChanged {
			cmp.DecisionChanges++
		}
		cmp.Practices = append(cmp.Practices, d)
	}

	cmp.BaselineMean, cmp.BaselineApproved = aggregate(before)
	cmp.CurrentMean, cmp.CurrentApproved = aggregate(after)
	cmp.MeanDelta = models.Round2(cmp.CurrentMean - cmp.BaselineMean)
	return cmp
}

func index(results []*models.ValidationResult) map[string]*models.ValidationResult {
	out := make(map[string]*models.ValidationResult, len(results))
	for _, r := range results {
		if r == nil || r.PracticeID == "" {
			continue
		}
		out[r.PracticeID] = r
	}
	return out
}

func aggregate(results map[string]*models.ValidationResult) (float64, int) {
	if len(results) == 0 {
		return 0, 0
	}
	var sum float64
	approved := 0
	for _, r := range results {
		sum += r.FinalScore
		if r.Decision.Approved() {
			approved++
		}
	}
	return models.Round2(sum / float64(len(results))), approved
}

func comparePractice(id string, before, after *models.ValidationResult) PracticeDelta {
	d := PracticeDelta{PracticeID: id}
	switch {
	case before == nil:
		d.Title = after.Title
		d.CurrentScore = scorePtr(after.FinalScore)
		d.CurrentDecision = after.Decision
		d.Change = ChangeAdded
		return d
	case after == nil:
		d.Title = before.Title
		d.BaselineScore = scorePtr(before.FinalScore)
		d.BaselineDecision = before.Decision
		d.Change = ChangeRemoved
		return d
	}

	d.Title = after.Title
	if d.Title == "" {
		d.Title = before.Title
	}
	d.BaselineScore = scorePtr(before.FinalScore)
	d.CurrentScore = scorePtr(after.FinalScore)
	d.ScoreDelta = models.Round2(after.FinalScore - before.FinalScore)
	d.BaselineDecision = before.Decision
	d.CurrentDecision = after.Decision
	d.DecisionChanged = before.Decision != after.Decision
	d.CriterionDeltas = criterionDeltas(before, after)

	// A decision move dominates the score direction.
	rankDelta := after.Decision.Rank() - before.Decision.Rank()
	switch {
	case rankDelta > 0:
		d.Change = ChangeImproved
	case rankDelta < 0:
		d.Change = ChangeRegressed
	case d.ScoreDelta > 0:
		d.Change = ChangeImproved
	case d.ScoreDelta < 0:
		d.Change = ChangeRegressed
	default:
		d.Change = ChangeUnchanged
	}
	return d
}

// criterionDeltas returns the non-zero score movements of criteria that have
// a final score in both results.
func criterionDeltas(before, after *models.ValidationResult) map[string]float64 {
	var out map[string]float64
	for _, c := range after.Criteria {
		prev, ok := before.Criterion(c.Code)
		if !ok || prev.FinalScore == nil || c.FinalScore == nil {
			continue
		}
		delta := models.Round2(*c.FinalScore - *prev.FinalScore)
		if delta == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]float64)
		}
		out[c.Code] = delta
	}
	return out
}

func scorePtr(v float64) *float64 {
	return &v
}
