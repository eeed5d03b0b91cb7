package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/aigents/quality-wheel/internal/models"
)

// RenderMarkdown renders results as a Markdown report with one section per
// practice and a criterion table each.
func RenderMarkdown(results []*models.ValidationResult) string {
	var b strings.Builder
	b.WriteString("# Quality Wheel Report\n\n")

	if len(results) > 1 {
		b.WriteString("| Practice | Score | Decision |\n")
		b.WriteString("|---|---:|---|\n")
		for _, r := range results {
			fmt.Fprintf(&b, "| %s | %.2f | %s %s |\n", escapeCell(label(r)), r.FinalScore, DecisionIcon(r.Decision), r.Decision)
		}
		b.WriteString("\n")
	}

	for _, r := range results {
		writePracticeMarkdown(&b, r)
	}
	return b.String()
}

func writePracticeMarkdown(b *strings.Builder, r *models.ValidationResult) {
	fmt.Fprintf(b, "## %s\n\n", label(r))
	fmt.Fprintf(b, "**Score:** %.2f (%s)  \n", r.FinalScore, InterpretScore(r.FinalScore))
	fmt.Fprintf(b, "**Decision:** %s %s  \n", DecisionIcon(r.Decision), r.Decision)
	fmt.Fprintf(b, "**Rubric version:** %d\n\n", r.RubricVersion)

	b.WriteString("| Criterion | Score | Valid | Below threshold | Missing |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, c := range r.Criteria {
		score := "–"
		if c.FinalScore != nil {
			score = fmt.Sprintf("%.2f", *c.FinalScore)
		}
		var valid, below, missing int
		for _, s := range c.SubResults {
			switch {
			case s.IsValid:
				valid++
			case s.Missing:
				missing++
			default:
				below++
			}
		}
		fmt.Fprintf(b, "| %s (%s) | %s | %d | %d | %d |\n", escapeCell(c.Name), c.Code, score, valid, below, missing)
	}
	b.WriteString("\n")

	if len(r.MissingRequired) > 0 {
		b.WriteString("**Missing required:** ")
		quoted := make([]string, len(r.MissingRequired))
		for i, id := range r.MissingRequired {
			quoted[i] = "`" + id + "`"
		}
		b.WriteString(strings.Join(quoted, ", "))
		b.WriteString("\n\n")
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("### Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}
}

// RenderHTML renders results as a standalone HTML page via Markdown.
func RenderHTML(results []*models.ValidationResult) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(results)), &body); err != nil {
		return "", fmt.Errorf("rendering HTML report: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>Quality Wheel Report</title>\n")
	b.WriteString("<style>body{font-family:sans-serif;max-width:60em;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3em .6em}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func label(r *models.ValidationResult) string {
	switch {
	case r.Title != "" && r.PracticeID != "":
		return fmt.Sprintf("%s (%s)", r.Title, r.PracticeID)
	case r.Title != "":
		return r.Title
	case r.PracticeID != "":
		return r.PracticeID
	default:
		return "Practice"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
