package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wheel",
		Short: "Quality Wheel - score AI practices against a weighted rubric",
		Long: `Quality Wheel scores AI practices against a six-criterion rubric
(Quality, Reproducibility, Utility, Applicability, Innovation, Reliability).

Each practice supplies 0-10 sub-scores. Wheel checks them against per
sub-criterion thresholds, aggregates a weighted score per criterion and an
overall score, and decides approve, review, reject or needs_improvement.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("rubric", "", "Rubric YAML file (default: paths.rubric from .wheel.yaml, else built-in)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newBatchCommand())
	cmd.AddCommand(newRubricCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newCompareCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
