package reporting

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigents/quality-wheel/internal/models"
)

func findCase(t *testing.T, suite JUnitTestSuite, name string) JUnitTestCase {
	t.Helper()
	for _, tc := range suite.TestCases {
		if tc.Name == name {
			return tc
		}
	}
	t.Fatalf("testcase %q not found in suite %q", name, suite.Name)
	return JUnitTestCase{}
}

func TestConvertToJUnit_ApprovedPractice(t *testing.T) {
	suites := ConvertToJUnit("batch", []*models.ValidationResult{approvedResult()}, nil)

	require.Len(t, suites.TestSuites, 1)
	suite := suites.TestSuites[0]
	assert.Equal(t, "p-approved", suite.Name)
	assert.Equal(t, 21, suite.Tests, "20 sub-criteria plus the decision")
	assert.Equal(t, 0, suite.Failures)
	assert.Equal(t, 1, suite.Skipped)
	assert.Equal(t, "2026-03-01T09:30:00Z", suite.Timestamp)

	skipped := findCase(t, suite, "Q.examples")
	require.NotNil(t, skipped.Skipped)
	assert.Equal(t, "p-approved.Q", skipped.Classname)

	decision := findCase(t, suite, "decision")
	assert.Nil(t, decision.Failure)

	assert.Equal(t, 21, suites.Tests)
	assert.Equal(t, 0, suites.Failures)
}

func TestConvertToJUnit_WeakPractice(t *testing.T) {
	suites := ConvertToJUnit("batch", []*models.ValidationResult{weakResult()}, nil)
	suite := suites.TestSuites[0]

	assert.Equal(t, 21, suite.Tests)
	assert.Equal(t, 12, suite.Failures, "11 required sub-criteria plus the decision")
	assert.Equal(t, 8, suite.Skipped)

	below := findCase(t, suite, "Q.fullness")
	require.NotNil(t, below.Failure)
	assert.Equal(t, "RequiredBelowThreshold", below.Failure.Type)

	missing := findCase(t, suite, "R.steps_clarity")
	require.NotNil(t, missing.Failure)
	assert.Equal(t, "MissingRequired", missing.Failure.Type)

	decision := findCase(t, suite, "decision")
	require.NotNil(t, decision.Failure)
	assert.Equal(t, "DecisionNotApproved", decision.Failure.Type)
	assert.Contains(t, decision.Failure.Message, "needs_improvement")
	assert.Contains(t, decision.Failure.Body, "Improve Q.fullness")
}

func TestConvertToJUnit_Errored(t *testing.T) {
	suites := ConvertToJUnit("batch", nil, map[string]string{
		"p-b": "invalid input for Q.fullness (value 11): score must be within [0, 10]",
		"p-a": "invalid input for X: unknown criterion",
	})

	require.Len(t, suites.TestSuites, 2)
	assert.Equal(t, "p-a", suites.TestSuites[0].Name, "errored suites are sorted by id")
	assert.Equal(t, 2, suites.Errors)
	assert.Equal(t, 2, suites.Tests)
	require.NotNil(t, suites.TestSuites[1].TestCases[0].Error)
	assert.Equal(t, "EvaluationError", suites.TestSuites[1].TestCases[0].Error.Type)
}

func TestMarshalJUnit(t *testing.T) {
	suites := ConvertToJUnit("batch", []*models.ValidationResult{approvedResult(), weakResult()}, nil)
	data, err := MarshalJUnit(suites)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xml.Header))

	var parsed JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, "batch", parsed.Name)
	assert.Len(t, parsed.TestSuites, 2)
	assert.Equal(t, suites.Failures, parsed.Failures)

	props := map[string]string{}
	for _, p := range parsed.TestSuites[0].Properties {
		props[p.Name] = p.Value
	}
	assert.Equal(t, "approve", props["decision"])
	assert.Equal(t, "8.00", props["final_score"])
}
