package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aigents/quality-wheel/internal/cache"
	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/orchestration"
	"github.com/aigents/quality-wheel/internal/practice"
	"github.com/aigents/quality-wheel/internal/reporting"
	"github.com/aigents/quality-wheel/internal/spinner"
	"github.com/aigents/quality-wheel/internal/webapi"
)

var batchFormats = []string{formatText, formatJSON, formatMarkdown, formatJUnit}

type batchOptions struct {
	workers     int
	output      string
	noSave      bool
	useCache    bool
	cacheDir    string
	filters     []string
	rowRange    string
	format      string
	reportOut   string
	minDecision string
}

func newBatchCommand() *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch [dir | file.csv]",
		Short: "Re-evaluate many practices concurrently",
		Long: `Evaluate every practice in a directory or CSV export with a bounded
worker pool and save one result JSON per practice.

Without an argument, paths.practices from .wheel.yaml is used. Results go to
--output (default paths.results) unless --no-save is given; 'wheel serve'
lists the same files. With --cache, results are reused while the rubric,
decision thresholds and practice scores are unchanged.

Exits 0 when every practice is approved (or reaches --min-decision), 1 when
any is not, 2 on error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Practices evaluated at once (default: defaults.workers from .wheel.yaml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Directory for result JSON files (default: paths.results)")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not write result files")
	cmd.Flags().BoolVar(&opts.useCache, "cache", false, "Reuse cached results (default: cache.enabled from .wheel.yaml)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache directory (default: cache.dir)")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "Only evaluate practices whose ID or title matches this glob (repeatable)")
	cmd.Flags().StringVar(&opts.rowRange, "range", "", "CSV data rows to read, as start:end (1-based, inclusive)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Report format: text, json, markdown, junit")
	cmd.Flags().StringVar(&opts.reportOut, "report", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&opts.minDecision, "min-decision", string(models.DecisionApprove), "Lowest decision that still exits 0: approve, review, needs_improvement, reject")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *batchOptions, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	if err := checkFormat(opts.format, batchFormats); err != nil {
		return err
	}
	minDecision, err := minDecisionFlag(opts.minDecision)
	if err != nil {
		return err
	}

	source := env.project.Resolve(env.project.Paths.Practices)
	if len(args) == 1 {
		source = args[0]
	}
	inputs, loadFailures, err := loadBatchInputs(source, opts.rowRange)
	if err != nil {
		return err
	}

	workers := opts.workers
	if workers <= 0 {
		workers = env.project.Defaults.Workers
	}
	runnerOpts := []orchestration.RunnerOption{
		orchestration.WithWorkers(workers),
		orchestration.WithFilters(opts.filters...),
		orchestration.WithLogger(env.logger),
	}

	if !opts.noSave {
		dir := opts.output
		if dir == "" {
			dir = env.project.Resolve(env.project.Paths.Results)
		}
		runnerOpts = append(runnerOpts, orchestration.WithResultWriter(webapi.NewFileStore(dir)))
	}

	useCache := opts.useCache || (env.project.Cache.Enabled != nil && *env.project.Cache.Enabled)
	if useCache {
		dir := opts.cacheDir
		if dir == "" {
			dir = env.project.Resolve(env.project.Cache.Dir)
		}
		c, err := cache.New(dir)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer c.Close()
		runnerOpts = append(runnerOpts, orchestration.WithCache(c, env.cacheVariant()))
	}

	runner := orchestration.NewBatchRunner(env.newEvaluator(), runnerOpts...)
	errOut := cmd.ErrOrStderr()
	stopSpinner := func() {}
	if spinner.Enabled(errOut) {
		spin := spinner.Start(errOut, "evaluating practices")
		stopSpinner = spin.Stop
		runner.OnProgress(func(ev orchestration.ProgressEvent) {
			if ev.EventType == orchestration.EventPracticeStart {
				spin.Set(fmt.Sprintf("evaluating %d/%d %s", ev.PracticeNum, ev.TotalPractices, ev.PracticeID))
			}
		})
	}
	runner.OnProgress(func(ev orchestration.ProgressEvent) {
		if ev.EventType == orchestration.EventResultWriteFailed {
			fmt.Fprintf(errOut, "warning: could not save %s: %v\n", ev.PracticeID, ev.Err) //nolint:errcheck
		}
	})

	outcome, err := runner.Run(cmd.Context(), inputs)
	stopSpinner()
	if err != nil {
		return err
	}
	outcome.AddFailures(loadFailures...)

	var w io.Writer = cmd.OutOrStdout()
	if opts.reportOut != "" {
		f, err := os.Create(opts.reportOut)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	if err := writeBatchReport(w, opts.format, outcome); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return notApproved(outcome.Results, len(outcome.Failures), minDecision)
}

// loadBatchInputs reads practices from a directory, a single file, or a CSV
// export optionally restricted to a row range. Files that could not be
// loaded are returned as failures.
func loadBatchInputs(source, rowRange string) ([]*models.PracticeInput, []orchestration.Failure, error) {
	if rowRange == "" {
		inputs, failed, err := loadPractices([]string{source})
		if err != nil {
			return nil, nil, err
		}
		failures := make([]orchestration.Failure, 0, len(failed))
		for path, msg := range failed {
			failures = append(failures, orchestration.Failure{PracticeID: path, Error: msg})
		}
		return inputs, failures, nil
	}
	if !isCSV(source) {
		return nil, nil, fmt.Errorf("--range requires a CSV file, got %s", source)
	}
	start, end, err := parseRange(rowRange)
	if err != nil {
		return nil, nil, err
	}
	inputs, err := practice.LoadCSVRange(source, start, end)
	return inputs, nil, err
}

// parseRange parses "start:end" into its bounds.
func parseRange(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid range %q: expected start:end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q: %w", lo, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q: %w", hi, err)
	}
	return start, end, nil
}

func writeBatchReport(w io.Writer, format string, outcome *orchestration.BatchOutcome) error {
	errored := make(map[string]string, len(outcome.Failures))
	for _, f := range outcome.Failures {
		errored[f.PracticeID] = f.Error
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	case formatMarkdown, formatJUnit:
		return writeResults(w, format, outcome.Results, errored)
	}

	rows := [][]string{{"Practice", "Score", "Decision", "Missing required"}}
	for _, r := range outcome.Results {
		id := r.PracticeID
		if r.Title != "" {
			id = fmt.Sprintf("%s (%s)", r.PracticeID, r.Title)
		}
		rows = append(rows, []string{
			id,
			fmt.Sprintf("%.2f", r.FinalScore),
			fmt.Sprintf("%s %s", reporting.DecisionIcon(r.Decision), r.Decision),
			strings.Join(r.MissingRequired, ", "),
		})
	}
	for _, f := range outcome.Failures {
		rows = append(rows, []string{f.PracticeID, "-", "✗ error", f.Error})
	}
	writeTable(w, rows)

	s := outcome.Summary
	fmt.Fprintf(w, "\n%d practice(s): %d approved, %d review, %d rejected, %d needs improvement, %d failed\n", //nolint:errcheck
		s.Total, s.Approved, s.Review, s.Rejected, s.NeedsImprovement, s.Failed)
	mean := fmt.Sprintf("%.2f", s.MeanScore)
	if s.MeanCI != nil {
		mean += fmt.Sprintf(" (95%% CI %.2f-%.2f, sd %.2f, range %.2f-%.2f)", s.MeanCI.Lower, s.MeanCI.Upper, s.StdDev, s.MinScore, s.MaxScore)
	}
	fmt.Fprintf(w, "Mean score: %s  Duration: %dms\n", mean, outcome.DurationMs) //nolint:errcheck
	return nil
}
