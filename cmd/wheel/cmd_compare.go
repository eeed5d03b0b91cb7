package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aigents/quality-wheel/internal/baseline"
	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/webapi"
)

func newCompareCommand() *cobra.Command {
	var (
		format           string
		failOnRegression bool
		changedOnly      bool
	)

	cmd := &cobra.Command{
		Use:   "compare <baseline-results-dir> <current-results-dir>",
		Short: "Compare two sets of stored results",
		Long: `Compare two result directories written by 'wheel batch' or 'wheel serve'.

Results are matched by practice ID. The report shows score deltas, decision
changes and per-criterion movement, which is useful after re-evaluating
practices against an adjusted rubric.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, []string{formatText, formatJSON}); err != nil {
				return err
			}

			before, err := loadResultDir(args[0])
			if err != nil {
				return err
			}
			after, err := loadResultDir(args[1])
			if err != nil {
				return err
			}

			report := baseline.Compare(before, after)
			if err := writeComparison(cmd.OutOrStdout(), format, report, changedOnly); err != nil {
				return fmt.Errorf("writing comparison: %w", err)
			}

			if failOnRegression && report.Regressed > 0 {
				return &NotApprovedError{Message: fmt.Sprintf("%d practice(s) regressed", report.Regressed)}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text or json")
	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "Exit with code 1 when any practice regressed")
	cmd.Flags().BoolVar(&changedOnly, "changed-only", false, "Only list practices whose score or decision changed")

	return cmd
}

// loadResultDir reads every stored result in dir.
func loadResultDir(dir string) ([]*models.ValidationResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading results %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	store := webapi.NewFileStore(dir)
	summaries, err := store.List("id", "asc")
	if err != nil {
		return nil, fmt.Errorf("loading results from %s: %w", dir, err)
	}
	out := make([]*models.ValidationResult, 0, len(summaries))
	for _, s := range summaries {
		r, err := store.Get(s.ID)
		if err != nil {
			return nil, err
		}
		if r.PracticeID == "" {
			cp := *r
			cp.PracticeID = s.ID
			r = &cp
		}
		out = append(out, r)
	}
	return out, nil
}

func writeComparison(w io.Writer, format string, c *baseline.Comparison, changedOnly bool) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	rows := [][]string{{"Practice", "Baseline", "Current", "Delta", "Decision", "Criteria"}}
	for _, d := range c.Practices {
		if changedOnly && d.Change == baseline.ChangeUnchanged {
			continue
		}
		decision := string(d.CurrentDecision)
		if d.DecisionChanged {
			decision = fmt.Sprintf("%s → %s", d.BaselineDecision, d.CurrentDecision)
		}
		if d.Change == baseline.ChangeRemoved {
			decision = string(d.BaselineDecision) + " (removed)"
		}
		rows = append(rows, []string{
			changeIcon(d.Change) + " " + d.PracticeID,
			formatOptionalScore(d.BaselineScore),
			formatOptionalScore(d.CurrentScore),
			formatDelta(d),
			decision,
			formatCriterionDeltas(d.CriterionDeltas),
		})
	}
	writeTable(w, rows)

	_, err := fmt.Fprintf(w, "\nMean score: %.2f → %.2f (%+.2f). Approved: %d → %d.\n"+
		"%d improved, %d regressed, %d added, %d removed, %d decision change(s).\n",
		c.BaselineMean, c.CurrentMean, c.MeanDelta, c.BaselineApproved, c.CurrentApproved,
		c.Improved, c.Regressed, c.Added, c.Removed, c.DecisionChanges)
	return err
}

func changeIcon(c baseline.Change) string {
	switch c {
	case baseline.ChangeImproved:
		return "↑"
	case baseline.ChangeRegressed:
		return "↓"
	case baseline.ChangeAdded:
		return "+"
	case baseline.ChangeRemoved:
		return "-"
	default:
		return " "
	}
}

func formatOptionalScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatDelta(d baseline.PracticeDelta) string {
	if d.BaselineScore == nil || d.CurrentScore == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f", d.ScoreDelta)
}

func formatCriterionDeltas(deltas map[string]float64) string {
	codes := make([]string, 0, len(deltas))
	for code := range deltas {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s %+.2f", code, deltas[code]))
	}
	return strings.Join(parts, ", ")
}
