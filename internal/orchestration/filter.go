package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/aigents/quality-wheel/internal/models"
)

// FilterPractices returns the subset of inputs whose ID or Title matches at
// least one of the given glob patterns. An empty patterns slice returns all
// inputs unchanged.
func FilterPractices(inputs []*models.PracticeInput, patterns []string) ([]*models.PracticeInput, error) {
	if len(patterns) == 0 {
		return inputs, nil
	}

	var matched []*models.PracticeInput
	for _, in := range inputs {
		ok, err := matchesAny(in, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, in)
		}
	}
	return matched, nil
}

// matchesAny reports whether a practice's ID or Title matches any pattern.
func matchesAny(in *models.PracticeInput, patterns []string) (bool, error) {
	if in == nil {
		return false, nil
	}
	for _, p := range patterns {
		idMatch, err := filepath.Match(p, in.ID)
		if err != nil {
			return false, fmt.Errorf("invalid practice filter pattern %q: %w", p, err)
		}
		if idMatch {
			return true, nil
		}
		titleMatch, err := filepath.Match(p, in.Title)
		if err != nil {
			return false, fmt.Errorf("invalid practice filter pattern %q: %w", p, err)
		}
		if titleMatch {
			return true, nil
		}
	}
	return false, nil
}
