package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aigents/quality-wheel/internal/projectconfig"
	"github.com/aigents/quality-wheel/internal/recommend"
	"github.com/aigents/quality-wheel/internal/rubric"
	"github.com/aigents/quality-wheel/internal/wheel"
)

// environment is the state shared by commands that evaluate practices.
type environment struct {
	project    *projectconfig.ProjectConfig
	rubricPath string // empty when the built-in rubric is in use
	rubric     *rubric.Config
	thresholds wheel.DecisionThresholds
	nudges     bool
	logger     *slog.Logger
}

// loadEnvironment reads .wheel.yaml from the working directory upward and
// loads the rubric named by --rubric or paths.rubric. defaults.verbose sends
// debug logs for this command to stderr.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	project, err := projectconfig.Load(wd)
	if err != nil {
		return nil, err
	}

	env := &environment{
		project: project,
		nudges:  project.Defaults.Nudges != nil && *project.Defaults.Nudges,
		logger:  slog.Default(),
		thresholds: wheel.DecisionThresholds{
			Approve: *project.Decision.Approve,
			Review:  *project.Decision.Review,
		},
	}
	if project.Defaults.Verbose != nil && *project.Defaults.Verbose {
		env.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	if err := env.thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("%s decision section: %w", projectconfig.FileName, err)
	}

	flagPath, _ := cmd.Flags().GetString("rubric")
	switch {
	case flagPath != "":
		env.rubricPath = flagPath
	case project.Paths.Rubric != "":
		env.rubricPath = project.Resolve(project.Paths.Rubric)
	}

	if env.rubricPath == "" {
		env.rubric = rubric.Default(rubric.WithLogger(env.logger))
		return env, nil
	}
	env.rubric, err = rubric.LoadFile(env.rubricPath, rubric.WithLogger(env.logger))
	if err != nil {
		return nil, err
	}
	env.logger.Debug("Loaded rubric", "path", env.rubricPath, "criteria", len(env.rubric.Snapshot().Criteria))
	return env, nil
}

// newEvaluator builds an evaluator from the environment's settings.
func (e *environment) newEvaluator() *wheel.Evaluator {
	rec := recommend.NewEngine(
		recommend.WithBoundaryNudges(e.nudges),
		recommend.WithBoundaries(e.thresholds.Approve, e.thresholds.Review),
	)
	return wheel.NewEvaluator(e.rubric,
		wheel.WithDecisionThresholds(e.thresholds),
		wheel.WithRecommender(rec),
		wheel.WithLogger(e.logger),
	)
}

// cacheVariant identifies evaluator settings that change results but are
// not part of the rubric snapshot.
func (e *environment) cacheVariant() string {
	return fmt.Sprintf("approve=%g;review=%g;nudges=%t", e.thresholds.Approve, e.thresholds.Review, e.nudges)
}
