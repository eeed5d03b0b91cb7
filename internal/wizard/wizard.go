// Package wizard collects rubric threshold changes through an interactive form.
package wizard

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/rubric"
)

// Answers holds the raw values entered in the threshold form.
type Answers struct {
	MinValue string
	Weight   string
	Required bool
}

// AnswersFor pre-fills the form with the current sub-criterion settings.
func AnswersFor(current rubric.SubCriterionSpec) Answers {
	return Answers{
		MinValue: formatNumber(current.MinThreshold),
		Weight:   formatNumber(current.Weight),
		Required: current.Required,
	}
}

// Update converts the answers into a partial update that touches only the
// fields that differ from current.
func (a Answers) Update(current rubric.SubCriterionSpec) (rubric.ThresholdUpdate, error) {
	var u rubric.ThresholdUpdate

	minValue, err := parseBounded(a.MinValue, rubric.MinScore, rubric.MaxScore)
	if err != nil {
		return u, fmt.Errorf("minimum score: %w", err)
	}
	weight, err := parseBounded(a.Weight, 0, 1)
	if err != nil {
		return u, fmt.Errorf("weight: %w", err)
	}

	if minValue != current.MinThreshold {
		u.MinValue = &minValue
	}
	if weight != current.Weight {
		u.Weight = &weight
	}
	if a.Required != current.Required {
		req := a.Required
		u.Required = &req
	}
	return u, nil
}

// ValidateScore checks a threshold entry.
func ValidateScore(s string) error {
	_, err := parseBounded(s, rubric.MinScore, rubric.MaxScore)
	return err
}

// ValidateWeight checks a weight entry.
func ValidateWeight(s string) error {
	_, err := parseBounded(s, 0, 1)
	return err
}

// RunThresholdWizard shows a form for one sub-criterion and returns the
// resulting partial update. An unchanged form yields an empty update.
func RunThresholdWizard(in io.Reader, out io.Writer, criterion string, current rubric.SubCriterionSpec) (rubric.ThresholdUpdate, error) {
	answers := AnswersFor(current)
	id := models.SubCriterionID(criterion, current.Name)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Adjust "+id).
				Description("Other sub-criterion weights stay as they are; the criterion's weights must still sum to 1."),
			huh.NewInput().
				Title("Minimum score").
				Description("Scores below this fail the sub-criterion (0-10)").
				Value(&answers.MinValue).
				Validate(ValidateScore),
			huh.NewInput().
				Title("Weight").
				Description("Share of the criterion score (0-1)").
				Value(&answers.Weight).
				Validate(ValidateWeight),
			huh.NewConfirm().
				Title("Required?").
				Description("A missing required score blocks approval").
				Value(&answers.Required),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return rubric.ThresholdUpdate{}, fmt.Errorf("wizard failed: %w", err)
	}
	return answers.Update(current)
}

func parseBounded(s string, lo, hi float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("a value is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be within [%s, %s]", s, formatNumber(lo), formatNumber(hi))
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
