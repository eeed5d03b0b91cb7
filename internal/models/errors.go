package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput matches every *InvalidInputError via errors.Is.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("invalid configuration")
)

// InvalidInputError reports a practice input or request that cannot be
// evaluated: a score outside [0,10], a malformed shape, or an unknown
// criterion or sub-criterion.
type InvalidInputError struct {
	Criterion    string
	SubCriterion string
	Value        any
	Reason       string
}

func (e *InvalidInputError) Error() string {
	return formatIssue("invalid input", e.Criterion, e.SubCriterion, e.Value, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigurationError reports a rubric whose sub-criterion weights do not sum
// to 1.0, or a mutation that would make it so.
type ConfigurationError struct {
	Criterion    string
	SubCriterion string
	Value        any
	Reason       string
}

func (e *ConfigurationError) Error() string {
	return formatIssue("configuration error", e.Criterion, e.SubCriterion, e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func formatIssue(kind, criterion, subCriterion string, value any, reason string) string {
	var b strings.Builder
	b.WriteString(kind)
	switch {
	case criterion != "" && subCriterion != "":
		fmt.Fprintf(&b, " for %s", SubCriterionID(criterion, subCriterion))
	case criterion != "":
		fmt.Fprintf(&b, " for %s", criterion)
	case subCriterion != "":
		fmt.Fprintf(&b, " for %s", subCriterion)
	}
	if value != nil {
		fmt.Fprintf(&b, " (value %v)", value)
	}
	if reason != "" {
		b.WriteString(": ")
		b.WriteString(reason)
	}
	return b.String()
}
