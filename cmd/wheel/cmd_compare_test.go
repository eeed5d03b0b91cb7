package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigents/quality-wheel/internal/baseline"
	"github.com/aigents/quality-wheel/internal/models"
)

func writeResult(t *testing.T, dir string, r models.ValidationResult) {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	writeFile(t, dir, r.PracticeID+".json", string(data))
}

func seedComparison(t *testing.T) (string, string) {
	t.Helper()
	dir := chdirTemp(t)
	before := filepath.Join(dir, "before")
	after := filepath.Join(dir, "after")

	writeResult(t, before, models.ValidationResult{PracticeID: "p1", FinalScore: 7.5, Decision: models.DecisionApprove})
	writeResult(t, before, models.ValidationResult{PracticeID: "p2", FinalScore: 6, Decision: models.DecisionReview})
	writeResult(t, before, models.ValidationResult{PracticeID: "p3", FinalScore: 8, Decision: models.DecisionApprove})

	writeResult(t, after, models.ValidationResult{PracticeID: "p1", FinalScore: 6.5, Decision: models.DecisionReview})
	writeResult(t, after, models.ValidationResult{PracticeID: "p2", FinalScore: 6, Decision: models.DecisionReview})
	writeResult(t, after, models.ValidationResult{PracticeID: "p3", FinalScore: 8.25, Decision: models.DecisionApprove})
	return before, after
}

func TestCompare_TextReport(t *testing.T) {
	before, after := seedComparison(t)

	out, err := runCLI(t, "compare", before, after)
	require.NoError(t, err)
	assert.Contains(t, out, "approve → review")
	assert.Contains(t, out, "-1.00")
	assert.Contains(t, out, "+0.25")
	assert.Contains(t, out, "Approved: 2 → 1.")
	assert.Contains(t, out, "1 improved, 1 regressed, 0 added, 0 removed, 1 decision change(s).")
}

func TestCompare_ChangedOnly(t *testing.T) {
	before, after := seedComparison(t)

	out, err := runCLI(t, "compare", "--changed-only", before, after)
	require.NoError(t, err)
	assert.Contains(t, out, "p1")
	assert.NotContains(t, out, "p2")
}

func TestCompare_JSONAndFailOnRegression(t *testing.T) {
	before, after := seedComparison(t)

	out, err := runCLI(t, "compare", "-f", "json", "--fail-on-regression", before, after)
	var na *NotApprovedError
	require.ErrorAs(t, err, &na)
	assert.Equal(t, ExitNotApproved, exitCode(err))

	var report baseline.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Practices, 3)
	assert.Equal(t, baseline.ChangeRegressed, report.Practices[0].Change)
	assert.Equal(t, 1, report.Regressed)
}

func TestCompare_Errors(t *testing.T) {
	before, _ := seedComparison(t)

	_, err := runCLI(t, "compare", before, filepath.Join(before, "missing"))
	assert.ErrorContains(t, err, "reading results")

	_, err = runCLI(t, "compare", before, filepath.Join(before, "p1.json"))
	assert.ErrorContains(t, err, "is not a directory")

	_, err = runCLI(t, "compare", "-f", "markdown", before, before)
	assert.ErrorContains(t, err, "unsupported format")
}
