package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aigents/quality-wheel/internal/practice"
	"github.com/aigents/quality-wheel/internal/rubric"
	"github.com/aigents/quality-wheel/internal/validation"
)

func newValidateCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "validate <file | dir>...",
		Short: "Check practice and rubric files without scoring them",
		Long: `Check files against the practice or rubric JSON Schema. Practice files are
also checked against the active rubric for unknown criteria, unknown
sub-criteria and required sub-criteria without a score.

The file kind is detected from its top-level keys unless --kind is given.
CSV exports are skipped. Exits 2 when any file has problems.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, validation.Kind(kind), args)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Force the file kind: practice or rubric")

	return cmd
}

func runValidate(cmd *cobra.Command, kind validation.Kind, args []string) error {
	switch kind {
	case "", validation.KindPractice, validation.KindRubric:
	default:
		return fmt.Errorf("unknown kind %q (expected practice or rubric)", kind)
	}

	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	files, err := expandPaths(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, f := range files {
		if isCSV(f) {
			fmt.Fprintf(out, "- %s (csv, skipped)\n", f) //nolint:errcheck
			continue
		}
		problems, fileKind, err := validateOne(f, kind, env.rubric.Snapshot())
		if err != nil {
			return err
		}
		if len(problems) == 0 {
			fmt.Fprintf(out, "✓ %s (%s)\n", f, fileKind) //nolint:errcheck
			continue
		}
		invalid++
		fmt.Fprintf(out, "✗ %s (%s)\n", f, fileKind) //nolint:errcheck
		for _, p := range problems {
			fmt.Fprintf(out, "    %s\n", p) //nolint:errcheck
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d file(s) invalid", invalid, len(files))
	}
	return nil
}

func validateOne(path string, kind validation.Kind, snap *rubric.Snapshot) ([]string, validation.Kind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kind, fmt.Errorf("reading %s: %w", path, err)
	}
	if kind == "" {
		kind = validation.DetectKind(data)
	}

	if kind == validation.KindRubric {
		if problems := validation.ValidateRubricBytes(data); len(problems) > 0 {
			return problems, kind, nil
		}
		if _, err := rubric.Parse(data); err != nil {
			return []string{err.Error()}, kind, nil
		}
		return nil, kind, nil
	}

	if problems := validation.ValidatePracticeBytes(data); len(problems) > 0 {
		return problems, kind, nil
	}
	in, err := practice.Parse(data)
	if err != nil {
		return []string{err.Error()}, kind, nil
	}
	return validation.CheckAgainstRubric(snap, in), kind, nil
}
