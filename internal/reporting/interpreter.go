package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aigents/quality-wheel/internal/models"
)

// InterpretScore returns a plain-language label for a 0–10 score.
func InterpretScore(score float64) string {
	switch {
	case score >= 9:
		return "Excellent (9-10)"
	case score >= 7:
		return "Good (7-9)"
	case score >= 5:
		return "Needs Work (5-7)"
	default:
		return "Poor (<5)"
	}
}

// InterpretDecision explains what a decision means for the practice author.
func InterpretDecision(d models.Decision) string {
	switch d {
	case models.DecisionApprove:
		return "Approved for publication."
	case models.DecisionReview:
		return "Acceptable, but a reviewer should look before publication."
	case models.DecisionReject:
		return "Rejected: the overall score is too low."
	case models.DecisionNeedsImprovement:
		return "Needs improvement: required criteria are missing or below threshold."
	default:
		return string(d)
	}
}

// DecisionIcon returns a single-character marker for d.
func DecisionIcon(d models.Decision) string {
	switch d {
	case models.DecisionApprove:
		return "✓"
	case models.DecisionReview:
		return "~"
	default:
		return "✗"
	}
}

// FormatSummaryReport produces a plain-language report for one result.
func FormatSummaryReport(r *models.ValidationResult) string {
	var b strings.Builder

	b.WriteString("=== Interpretation ===\n\n")
	if r.Title != "" {
		fmt.Fprintf(&b, "Practice:      %s (%s)\n", r.Title, r.PracticeID)
	} else if r.PracticeID != "" {
		fmt.Fprintf(&b, "Practice:      %s\n", r.PracticeID)
	}
	fmt.Fprintf(&b, "Overall Score: %.2f — %s\n", r.FinalScore, InterpretScore(r.FinalScore))
	fmt.Fprintf(&b, "Decision:      %s %s — %s\n", DecisionIcon(r.Decision), r.Decision, InterpretDecision(r.Decision))

	if len(r.MissingRequired) > 0 {
		fmt.Fprintf(&b, "Missing:       %s\n", strings.Join(r.MissingRequired, ", "))
	}

	if len(r.Criteria) > 0 {
		b.WriteString("\nPer-Criterion Interpretation:\n")
		for _, c := range r.Criteria {
			if c.FinalScore == nil {
				fmt.Fprintf(&b, "  ✗ %s (%s): no valid sub-criteria\n", c.Name, c.Code)
				continue
			}
			icon := "✓"
			if c.HasMissingRequired {
				icon = "✗"
			}
			fmt.Fprintf(&b, "  %s %s (%s): %.2f — %s\n", icon, c.Name, c.Code, *c.FinalScore, InterpretScore(*c.FinalScore))
		}
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}

	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
