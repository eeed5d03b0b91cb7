package reporting

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/aigents/quality-wheel/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluated practice.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one sub-criterion, or to the overall decision.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test assertion failure.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a practice that could not be evaluated.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts evaluated practices to JUnit XML. Each practice is
// a suite: one testcase per sub-criterion plus a "decision" testcase that
// fails unless the practice was approved. Optional sub-criteria with no
// score are reported as skipped. errored lists practices that produced no
// result; each becomes a suite holding a single errored testcase.
func ConvertToJUnit(name string, results []*models.ValidationResult, errored map[string]string) *JUnitTestSuites {
	out := &JUnitTestSuites{Name: name}

	for _, r := range results {
		suite := convertResult(r)
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.TestSuites = append(out.TestSuites, suite)
	}

	for _, id := range sortedKeys(errored) {
		out.Tests++
		out.Errors++
		out.TestSuites = append(out.TestSuites, JUnitTestSuite{
			Name:   id,
			Tests:  1,
			Errors: 1,
			TestCases: []JUnitTestCase{{
				Name:      "evaluate",
				Classname: id,
				Error:     &JUnitError{Message: errored[id], Type: "EvaluationError"},
			}},
		})
	}
	return out
}

func convertResult(r *models.ValidationResult) JUnitTestSuite {
	suiteName := r.PracticeID
	if suiteName == "" {
		suiteName = "practice"
	}
	suite := JUnitTestSuite{
		Name: suiteName,
		Properties: []JUnitProperty{
			{Name: "title", Value: r.Title},
			{Name: "final_score", Value: fmt.Sprintf("%.2f", r.FinalScore)},
			{Name: "decision", Value: r.Decision.String()},
			{Name: "rubric_version", Value: fmt.Sprintf("%d", r.RubricVersion)},
		},
	}
	if !r.EvaluatedAt.IsZero() {
		suite.Timestamp = r.EvaluatedAt.Format(time.RFC3339)
	}

	for _, c := range r.Criteria {
		for _, s := range c.SubResults {
			tc := JUnitTestCase{
				Name:      models.SubCriterionID(c.Code, s.Name),
				Classname: suiteName + "." + c.Code,
			}
			switch {
			case s.IsValid:
			case s.Missing && !s.Required:
				tc.Skipped = &JUnitSkipped{Message: s.Explanation}
				suite.Skipped++
			default:
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%s: %s", tc.Name, s.Explanation),
					Type:    failureType(s),
				}
				suite.Failures++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
	}

	decision := JUnitTestCase{Name: "decision", Classname: suiteName}
	if !r.Decision.Approved() {
		decision.Failure = &JUnitFailure{
			Message: fmt.Sprintf("decision %s with final score %.2f", r.Decision, r.FinalScore),
			Type:    "DecisionNotApproved",
			Body:    strings.Join(r.Recommendations, "\n"),
		}
		suite.Failures++
	}
	suite.TestCases = append(suite.TestCases, decision)
	suite.Tests = len(suite.TestCases)
	return suite
}

func failureType(s models.SubScoreResult) string {
	switch {
	case s.Missing:
		return "MissingRequired"
	case s.Required:
		return "RequiredBelowThreshold"
	default:
		return "BelowThreshold"
	}
}

// MarshalJUnit renders suites as indented XML with the standard header.
func MarshalJUnit(suites *JUnitTestSuites) ([]byte, error) {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JUnit XML: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
