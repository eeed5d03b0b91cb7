package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aigents/quality-wheel/internal/rubric"
	"github.com/aigents/quality-wheel/internal/webapi"
	"github.com/aigents/quality-wheel/internal/webserver"
)

type serveOptions struct {
	port        int
	host        string
	allowRemote bool
	resultsDir  string
	origins     []string
	persist     bool
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Quality Wheel HTTP API",
		Long: `Start a JSON HTTP API around the scoring engine.

Endpoints:
  GET   /api/health
  GET   /api/rubric
  PATCH /api/rubric/{criterion}/{subCriterion}   adjust one sub-criterion
  PUT   /api/rubric/{criterion}/weights          replace several weights at once
  POST  /api/evaluate                            score a practice (?save=false to skip storing)
  GET   /api/results                             ?sort=score|id|evaluatedAt&order=asc|desc
  GET   /api/results/{id}
  GET   /api/summary

The server binds to loopback unless --allow-remote is set. With --persist,
rubric changes are written back to the active rubric file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default: server.port from .wheel.yaml)")
	cmd.Flags().StringVar(&opts.host, "host", "127.0.0.1", "Interface to bind")
	cmd.Flags().BoolVar(&opts.allowRemote, "allow-remote", false,
		"Allow binding to non-loopback addresses (WARNING: the API has no authentication)")
	cmd.Flags().StringVar(&opts.resultsDir, "results", "", "Directory of result JSON files (default: server.results_dir)")
	cmd.Flags().StringArrayVar(&opts.origins, "allow-origin", nil, "Allow cross-origin requests from this origin (repeatable)")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "Write rubric changes back to the rubric file")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	logger := env.logger

	host, err := resolveHost(opts.host, opts.allowRemote, logger)
	if err != nil {
		return err
	}
	port := opts.port
	if port == 0 {
		port = env.project.Server.Port
	}
	resultsDir := opts.resultsDir
	if resultsDir == "" {
		resultsDir = env.project.Resolve(env.project.Server.ResultsDir)
	}
	origins := opts.origins
	if len(origins) == 0 {
		origins = env.project.Server.AllowedOrigins
	}

	handlerOpts := []webapi.HandlerOption{webapi.WithLogger(logger)}
	if opts.persist {
		if env.rubricPath == "" {
			return fmt.Errorf("--persist needs a rubric file (--rubric or paths.rubric)")
		}
		path := env.rubricPath
		handlerOpts = append(handlerOpts, webapi.WithRubricHook(func(c *rubric.Config) error {
			return rubric.WriteFile(path, c)
		}))
	}

	store := webapi.NewFileStore(resultsDir)
	handlers := webapi.NewHandlers(env.newEvaluator(), store, handlerOpts...)
	router := webapi.NewRouter(handlers, webapi.RouterConfig{
		AllowedOrigins: origins,
		Timeout:        30 * time.Second,
		Logger:         logger,
	})

	srv, err := webserver.New(webserver.Config{Host: host, Port: port, Logger: logger}, router)
	if err != nil {
		return err
	}
	go func() {
		if addr, ok := <-srv.Ready(); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Quality Wheel API listening on http://%s/api\n", addr) //nolint:errcheck
		}
	}()
	return srv.ListenAndServe(cmd.Context())
}

// resolveHost keeps the server on loopback unless remote binding is allowed.
func resolveHost(host string, allowRemote bool, logger *slog.Logger) (string, error) {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		if host == "" {
			host = "127.0.0.1"
		}
		return host, nil
	}
	if !allowRemote {
		return "", fmt.Errorf("refusing to bind %s without --allow-remote", host)
	}
	logger.Warn("HTTP server binding to a non-loopback address; no authentication is provided", "host", host)
	return host, nil
}
