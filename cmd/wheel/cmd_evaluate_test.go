package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigents/quality-wheel/internal/models"
)

func TestEvaluate_ApprovedText(t *testing.T) {
	dir := chdirTemp(t)
	p := writeFile(t, dir, "approved.yaml", approvedPractice)

	out, err := runCLI(t, "evaluate", p)
	require.NoError(t, err)
	assert.Contains(t, out, "Criterion")
	assert.Contains(t, out, "Quality (Q)")
	assert.Contains(t, out, "8.00")
	assert.Contains(t, out, "approve")
}

func TestEvaluate_NotApprovedExitsWithNotApprovedError(t *testing.T) {
	dir := chdirTemp(t)
	p := writeFile(t, dir, "weak.yaml", weakPractice)

	out, err := runCLI(t, "evaluate", p)
	var na *NotApprovedError
	require.ErrorAs(t, err, &na)
	assert.Contains(t, na.Message, "prac-weak (needs_improvement)")
	assert.Contains(t, out, "R.steps_clarity")
	assert.Equal(t, ExitNotApproved, exitCode(err))
}

func TestEvaluate_MinDecision(t *testing.T) {
	dir := chdirTemp(t)
	p := writeFile(t, dir, "weak.yaml", weakPractice)

	_, err := runCLI(t, "evaluate", "--min-decision", "needs_improvement", p)
	assert.NoError(t, err)

	_, err = runCLI(t, "evaluate", "--min-decision", "review", p)
	var na *NotApprovedError
	require.ErrorAs(t, err, &na)
	assert.Contains(t, na.Message, "below review")

	_, err = runCLI(t, "evaluate", "--min-decision", "maybe", p)
	assert.ErrorContains(t, err, "--min-decision")
	assert.Equal(t, ExitError, exitCode(err))
}

func TestEvaluate_JSON(t *testing.T) {
	dir := chdirTemp(t)
	p := writeFile(t, dir, "approved.json", `{"id": "j1", "scores": {"Q": {"fullness": 9, "structure": 9}}}`)

	out, err := runCLI(t, "evaluate", "--format", "json", p)
	var na *NotApprovedError
	require.ErrorAs(t, err, &na, "other criteria are missing required scores")

	var result models.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "j1", result.PracticeID)
	assert.Equal(t, models.DecisionNeedsImprovement, result.Decision)
	assert.Equal(t, 9.0, result.FinalScore)
}

func TestEvaluate_MultipleFilesAsJSONArray(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, dir, "practices/a.yaml", approvedPractice)
	writeFile(t, dir, "practices/b.yaml", weakPractice)

	out, err := runCLI(t, "evaluate", "-f", "json", filepath.Join(dir, "practices"))
	require.Error(t, err)

	var results []models.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "prac-approved", results[0].PracticeID)
	assert.Equal(t, "prac-weak", results[1].PracticeID)
}

func TestEvaluate_SchemaViolationIsReportedPerFile(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, dir, "practices/a.yaml", approvedPractice)
	bad := writeFile(t, dir, "practices/bad.yaml", "scores:\n  Q:\n    fullness: 12\n")

	out, err := runCLI(t, "evaluate", filepath.Join(dir, "practices"))
	var na *NotApprovedError
	require.ErrorAs(t, err, &na)
	assert.Equal(t, ExitNotApproved, exitCode(err))
	assert.Contains(t, na.Message, "1 of 2 practice(s) not approved")

	assert.Contains(t, out, "prac-approved")
	assert.Contains(t, out, bad)
	assert.Contains(t, out, "does not match the practice schema")
	assert.Contains(t, out, "/scores/Q/fullness")
}

func TestEvaluate_UnknownCriterionIsReportedPerPractice(t *testing.T) {
	dir := chdirTemp(t)
	p := writeFile(t, dir, "odd.yaml", "id: odd\nscores:\n  Z: {anything: 5}\n")

	out, err := runCLI(t, "evaluate", p)
	var na *NotApprovedError
	require.ErrorAs(t, err, &na)
	assert.Contains(t, out, "✗ odd: invalid input for Z: unknown criterion")
}

func TestEvaluate_CSV(t *testing.T) {
	dir := chdirTemp(t)
	p := writeFile(t, dir, "scores.csv", strings.Join([]string{
		"practice_id,criterion,sub_criterion,score",
		"p1,Q,fullness,8",
		"p1,Q,structure,7",
		"p2,Q,fullness,3",
	}, "\n")+"\n")

	out, err := runCLI(t, "evaluate", "-f", "json", p)
	require.Error(t, err)
	var results []models.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].PracticeID)
}

func TestEvaluate_ReportFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"markdown", "| Criterion |"},
		{"html", "<table>"},
		{"junit", "<testsuites"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := chdirTemp(t)
			p := writeFile(t, dir, "approved.yaml", approvedPractice)

			out, err := runCLI(t, "evaluate", "--format", tt.format, p)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestEvaluate_OutputFile(t *testing.T) {
	dir := chdirTemp(t)
	p := writeFile(t, dir, "approved.yaml", approvedPractice)
	report := filepath.Join(dir, "report.xml")

	out, err := runCLI(t, "evaluate", "-f", "junit", "-o", report, p)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<testsuites")
}

func TestEvaluate_FormatFromProjectConfig(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, dir, ".wheel.yaml", "defaults:\n  format: json\n")
	p := writeFile(t, dir, "approved.yaml", approvedPractice)

	out, err := runCLI(t, "evaluate", p)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestEvaluate_DecisionThresholdsFromProjectConfig(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, dir, ".wheel.yaml", "decision:\n  approve: 9\n  review: 5\n")
	p := writeFile(t, dir, "approved.yaml", approvedPractice)

	out, err := runCLI(t, "evaluate", "-f", "json", p)
	require.Error(t, err)
	var result models.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, models.DecisionReview, result.Decision)
}

func TestEvaluate_Errors(t *testing.T) {
	dir := chdirTemp(t)
	p := writeFile(t, dir, "approved.yaml", approvedPractice)

	_, err := runCLI(t, "evaluate", "--format", "pdf", p)
	assert.ErrorContains(t, err, `unsupported format "pdf"`)

	_, err = runCLI(t, "evaluate", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))
	_, err = runCLI(t, "evaluate", empty)
	assert.ErrorContains(t, err, "no practice files found")

	_, err = runCLI(t, "evaluate")
	assert.Error(t, err)

	var na *NotApprovedError
	assert.False(t, errors.As(err, &na))
}

func TestEvaluate_RubricFlag(t *testing.T) {
	dir := chdirTemp(t)
	rubricPath := writeFile(t, dir, "rubric.yaml", `overrides:
  - criterion: R
    sub_criterion: steps_clarity
    required: false
    min_value: 3
`)
	p := writeFile(t, dir, "weak.yaml", weakPractice)

	out, err := runCLI(t, "evaluate", "--rubric", rubricPath, "-f", "json", p)
	require.Error(t, err)
	var result models.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotContains(t, result.MissingRequired, "R.steps_clarity")
	assert.Equal(t, uint64(2), result.RubricVersion)
}
