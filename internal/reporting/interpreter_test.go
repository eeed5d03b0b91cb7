package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aigents/quality-wheel/internal/models"
)

func TestInterpretScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"excellent top", 10, "Excellent (9-10)"},
		{"excellent boundary", 9, "Excellent (9-10)"},
		{"good high", 8.99, "Good (7-9)"},
		{"good boundary", 7, "Good (7-9)"},
		{"needs work high", 6.99, "Needs Work (5-7)"},
		{"needs work boundary", 5, "Needs Work (5-7)"},
		{"poor high", 4.99, "Poor (<5)"},
		{"poor zero", 0, "Poor (<5)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretScore(tt.score))
		})
	}
}

func TestInterpretDecision(t *testing.T) {
	assert.Contains(t, InterpretDecision(models.DecisionApprove), "Approved")
	assert.Contains(t, InterpretDecision(models.DecisionReview), "reviewer")
	assert.Contains(t, InterpretDecision(models.DecisionReject), "Rejected")
	assert.Contains(t, InterpretDecision(models.DecisionNeedsImprovement), "required")
	assert.Equal(t, "odd", InterpretDecision(models.Decision("odd")))
}

func TestDecisionIcon(t *testing.T) {
	assert.Equal(t, "✓", DecisionIcon(models.DecisionApprove))
	assert.Equal(t, "~", DecisionIcon(models.DecisionReview))
	assert.Equal(t, "✗", DecisionIcon(models.DecisionReject))
	assert.Equal(t, "✗", DecisionIcon(models.DecisionNeedsImprovement))
}

func TestFormatSummaryReport_Approved(t *testing.T) {
	report := FormatSummaryReport(approvedResult())

	assert.Contains(t, report, "=== Interpretation ===")
	assert.Contains(t, report, "Prompt library with regression tests (p-approved)")
	assert.Contains(t, report, "Overall Score: 8.00 — Good (7-9)")
	assert.Contains(t, report, "✓ approve")
	assert.Contains(t, report, "✓ Quality (Q): 8.00")
	assert.NotContains(t, report, "Missing:")
	assert.NotContains(t, report, "Recommendations:")
}

func TestFormatSummaryReport_Weak(t *testing.T) {
	report := FormatSummaryReport(weakResult())

	assert.Contains(t, report, "Practice:      p-weak\n")
	assert.Contains(t, report, "needs_improvement")
	assert.Contains(t, report, "Missing:       Q.fullness")
	assert.Contains(t, report, "✗ Quality (Q): 7.00")
	assert.Contains(t, report, "✗ Reproducibility (R): no valid sub-criteria")
	assert.Contains(t, report, "Recommendations:\n  - Improve Q.fullness: scored 4.00, needs ≥ 6.00")
}
