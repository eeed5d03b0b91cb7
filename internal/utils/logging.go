package utils

import (
	"context"
	"log/slog"

	"github.com/aigents/quality-wheel/internal/models"
)

// ResultToSlog logs a finished evaluation at debug level. It is a no-op when
// debug logging is disabled so callers can invoke it unconditionally.
func ResultToSlog(logger *slog.Logger, result *models.ValidationResult) {
	if logger == nil {
		logger = slog.Default()
	}
	if result == nil || !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"decision", result.Decision,
		"finalScore", result.FinalScore,
		"rubricVersion", result.RubricVersion,
	}

	attrs = addIf(attrs, "practice", result.PracticeID)
	attrs = addIf(attrs, "title", result.Title)
	attrs = addIfAny(attrs, "missingRequired", result.MissingRequired)
	attrs = addIfAny(attrs, "recommendations", result.Recommendations)

	logger.Debug("Practice evaluated", attrs...)
}

func addIf(attrs []any, name string, v string) []any {
	if v != "" {
		attrs = append(attrs, name, v)
	}
	return attrs
}

func addIfAny[T any](attrs []any, name string, v []T) []any {
	if len(v) > 0 {
		attrs = append(attrs, name, len(v))
	}
	return attrs
}
