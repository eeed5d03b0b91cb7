package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/rubric"
)

func TestNotApprovedError(t *testing.T) {
	err := &NotApprovedError{Message: "1 of 2 practice(s) not approved"}
	assert.Equal(t, "1 of 2 practice(s) not approved", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"not approved", &NotApprovedError{Message: "x"}, ExitNotApproved},
		{"wrapped not approved", fmt.Errorf("batch: %w", &NotApprovedError{Message: "x"}), ExitNotApproved},
		{"joined not approved", errors.Join(&NotApprovedError{Message: "x"}, errors.New("more")), ExitNotApproved},
		{"configuration error", &models.ConfigurationError{Reason: "bad weights"}, ExitError},
		{"runtime error", errors.New("disk full"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestNotApproved(t *testing.T) {
	approved := &models.ValidationResult{PracticeID: "a", Decision: models.DecisionApprove}
	review := &models.ValidationResult{PracticeID: "b", Decision: models.DecisionReview}
	untitled := &models.ValidationResult{Title: "Untitled practice", Decision: models.DecisionNeedsImprovement}

	assert.NoError(t, notApproved([]*models.ValidationResult{approved}, 0, models.DecisionApprove))

	err := notApproved([]*models.ValidationResult{approved, review, untitled}, 0, models.DecisionApprove)
	var na *NotApprovedError
	assert.ErrorAs(t, err, &na)
	assert.Equal(t, "2 of 3 practice(s) not approved: b (review), Untitled practice (needs_improvement)", na.Message)

	err = notApproved([]*models.ValidationResult{approved}, 1, models.DecisionApprove)
	assert.EqualError(t, err, "1 of 2 practice(s) not approved")
}

func TestNotApproved_MinDecision(t *testing.T) {
	review := &models.ValidationResult{PracticeID: "b", Decision: models.DecisionReview}
	weak := &models.ValidationResult{PracticeID: "c", Decision: models.DecisionNeedsImprovement}
	rejected := &models.ValidationResult{PracticeID: "d", Decision: models.DecisionReject}

	assert.NoError(t, notApproved([]*models.ValidationResult{review}, 0, models.DecisionReview))

	err := notApproved([]*models.ValidationResult{review, weak, rejected}, 0, models.DecisionReview)
	assert.EqualError(t, err, "2 of 3 practice(s) below review: c (needs_improvement), d (reject)")

	assert.NoError(t, notApproved([]*models.ValidationResult{review, weak, rejected}, 0, models.DecisionReject))
	assert.Error(t, notApproved(nil, 1, models.DecisionReject), "failures count regardless of the floor")
}

func TestRootHelp_NamesDefaultCriteria(t *testing.T) {
	long := newRootCommand().Long
	for _, c := range rubric.DefaultCriteria() {
		assert.Contains(t, long, c.Name)
	}
}
