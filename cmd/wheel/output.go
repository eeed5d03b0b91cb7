package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/reporting"
)

// Output formats accepted by --format.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatJUnit    = "junit"
)

var resultFormats = []string{formatText, formatJSON, formatMarkdown, formatHTML, formatJUnit}

func checkFormat(format string, allowed []string) error {
	for _, f := range allowed {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (expected one of: %s)", format, strings.Join(allowed, ", "))
}

// writeResults renders results in the requested format. errored maps
// practice IDs that failed evaluation to their error text.
func writeResults(w io.Writer, format string, results []*models.ValidationResult, errored map[string]string) error {
	switch format {
	case formatJSON:
		var v any = results
		if len(results) == 1 && len(errored) == 0 {
			v = results[0]
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatMarkdown:
		_, err := io.WriteString(w, reporting.RenderMarkdown(results))
		return err
	case formatHTML:
		page, err := reporting.RenderHTML(results)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	case formatJUnit:
		data, err := reporting.MarshalJUnit(reporting.ConvertToJUnit("quality-wheel", results, errored))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w) //nolint:errcheck
			}
			writeResultText(w, r)
		}
		ids := make([]string, 0, len(errored))
		for id := range errored {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "\n✗ %s: %s\n", id, errored[id]) //nolint:errcheck
		}
		return nil
	}
}

// writeResultText prints a criterion table followed by the interpretation.
func writeResultText(w io.Writer, r *models.ValidationResult) {
	rows := [][]string{{"Criterion", "Score", "Valid", "Missing required"}}
	for _, c := range r.Criteria {
		score := "-"
		if c.FinalScore != nil {
			score = fmt.Sprintf("%.2f", *c.FinalScore)
		}
		var missing []string
		for _, s := range c.SubResults {
			if s.Required && !s.IsValid {
				missing = append(missing, s.Name)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s (%s)", c.Name, c.Code),
			score,
			fmt.Sprintf("%d/%d", len(c.Valid()), len(c.SubResults)),
			strings.Join(missing, ", "),
		})
	}
	writeTable(w, rows)
	fmt.Fprintln(w)                                 //nolint:errcheck
	fmt.Fprint(w, reporting.FormatSummaryReport(r)) //nolint:errcheck
}

// writeTable prints rows as left-aligned columns; the first row is the header.
func writeTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for n, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(padRight(cell, widths[i]+2))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " ")) //nolint:errcheck
		if n == 0 {
			total := 0
			for _, cw := range widths {
				total += cw + 2
			}
			fmt.Fprintln(w, strings.Repeat("─", total-2)) //nolint:errcheck
		}
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// notApproved returns a NotApprovedError when any result ranks below floor or
// any practice failed, nil otherwise.
func notApproved(results []*models.ValidationResult, failed int, floor models.Decision) error {
	var pending []string
	for _, r := range results {
		if r.Decision.Rank() < floor.Rank() {
			id := r.PracticeID
			if id == "" {
				id = r.Title
			}
			pending = append(pending, fmt.Sprintf("%s (%s)", id, r.Decision))
		}
	}
	if len(pending) == 0 && failed == 0 {
		return nil
	}
	verdict := "not approved"
	if floor != models.DecisionApprove {
		verdict = "below " + string(floor)
	}
	msg := fmt.Sprintf("%d of %d practice(s) %s", len(pending)+failed, len(results)+failed, verdict)
	if len(pending) > 0 {
		msg += ": " + strings.Join(pending, ", ")
	}
	return &NotApprovedError{Message: msg}
}

// minDecisionFlag parses the --min-decision value shared by evaluate and batch.
func minDecisionFlag(s string) (models.Decision, error) {
	d, err := models.ParseDecision(s)
	if err != nil {
		return "", fmt.Errorf("--min-decision: %w", err)
	}
	return d, nil
}
