package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aigents/quality-wheel/internal/models"
)

type evaluateOptions struct {
	format      string
	output      string
	minDecision string
}

func newEvaluateCommand() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate <practice-file | dir>...",
		Short: "Score practices against the rubric",
		Long: `Score one or more practices against the rubric and print the result.

Arguments may be YAML or JSON practice files, CSV exports with the columns
practice_id, criterion, sub_criterion and score, or directories of such files.
YAML and JSON files are checked against the practice schema first; a file
that fails the check is reported as an error for that practice and the rest
are still evaluated.

Exits 0 when every practice is approved (or reaches --min-decision), 1 when
any is not, 2 on error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: text, json, markdown, html, junit (default: defaults.format from .wheel.yaml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&opts.minDecision, "min-decision", string(models.DecisionApprove), "Lowest decision that still exits 0: approve, review, needs_improvement, reject")

	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	format := opts.format
	if format == "" {
		format = env.project.Defaults.Format
	}
	if err := checkFormat(format, resultFormats); err != nil {
		return err
	}
	minDecision, err := minDecisionFlag(opts.minDecision)
	if err != nil {
		return err
	}

	inputs, errored, err := loadPractices(args)
	if err != nil {
		return err
	}
	for path, msg := range errored {
		env.logger.Debug("Skipping practice file", "path", path, "error", msg)
	}

	evaluator := env.newEvaluator()
	results := make([]*models.ValidationResult, 0, len(inputs))
	for _, in := range inputs {
		r, err := evaluator.EvaluatePractice(cmd.Context(), in)
		if err != nil {
			if errors.Is(err, models.ErrInvalidInput) {
				errored[displayID(in)] = err.Error()
				continue
			}
			return fmt.Errorf("evaluating %s: %w", displayID(in), err)
		}
		results = append(results, r)
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	if err := writeResults(w, format, results, errored); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if opts.output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", opts.output) //nolint:errcheck
	}

	return notApproved(results, len(errored), minDecision)
}

func displayID(in *models.PracticeInput) string {
	switch {
	case in.ID != "":
		return in.ID
	case in.Title != "":
		return in.Title
	default:
		return "(unnamed)"
	}
}
