// Package projectconfig provides the ProjectConfig struct and loader for
// .wheel.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aigents/quality-wheel/internal/utils"
)

// FileName is the project configuration file looked up from the working directory.
const FileName = ".wheel.yaml"

// EnvRubric overrides paths.rubric when set.
const EnvRubric = "WHEEL_RUBRIC"

// Default values for project configuration. These are the single source of
// truth; New() references them.
const (
	DefaultPracticesDir = "practices/"
	DefaultResultsDir   = "results/"

	DefaultFormat  = "text"
	DefaultWorkers = 4

	DefaultApproveThreshold = 7.0
	DefaultReviewThreshold  = 5.0

	DefaultCacheDir = ".wheel-cache"

	DefaultServerPort       = 3000
	DefaultServerResultsDir = "results/"
)

// PathsConfig holds the rubric file and the practice/result directories.
// An empty Rubric means the built-in rubric.
type PathsConfig struct {
	Rubric    string `yaml:"rubric,omitempty"`
	Practices string `yaml:"practices,omitempty"`
	Results   string `yaml:"results,omitempty"`
}

// DefaultsConfig holds default execution parameters.
type DefaultsConfig struct {
	Format  string `yaml:"format,omitempty"`
	Workers int    `yaml:"workers,omitempty"`
	Nudges  *bool  `yaml:"nudges,omitempty"`
	Verbose *bool  `yaml:"verbose,omitempty"`
}

// DecisionConfig holds the approve/review score boundaries.
type DecisionConfig struct {
	Approve *float64 `yaml:"approve,omitempty"`
	Review  *float64 `yaml:"review,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	ResultsDir     string   `yaml:"results_dir,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .wheel.yaml.
type ProjectConfig struct {
	Paths    PathsConfig    `yaml:"paths,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Decision DecisionConfig `yaml:"decision,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`

	// Dir is the directory the config file was found in; relative paths
	// resolve against it. Empty when no file was found.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Practices: DefaultPracticesDir,
			Results:   DefaultResultsDir,
		},
		Defaults: DefaultsConfig{
			Format:  DefaultFormat,
			Workers: DefaultWorkers,
			Nudges:  utils.Ptr(false),
			Verbose: utils.Ptr(false),
		},
		Decision: DecisionConfig{
			Approve: utils.Ptr(DefaultApproveThreshold),
			Review:  utils.Ptr(DefaultReviewThreshold),
		},
		Cache: CacheConfig{
			Enabled: utils.Ptr(false),
			Dir:     DefaultCacheDir,
		},
		Server: ServerConfig{
			Port:       DefaultServerPort,
			ResultsDir: DefaultServerResultsDir,
		},
	}
}

// Load finds .wheel.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
// A relative WHEEL_RUBRIC is resolved against startDir, not the config
// file's directory.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", startDir, err)
	}

	data, dir, err := findConfigFile(absStart)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// no file found → defaults
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		mergeConfig(cfg, &fileCfg)
		cfg.Dir = dir
	}

	if v := os.Getenv(EnvRubric); v != "" {
		cfg.Paths.Rubric = utils.ResolvePath(v, absStart)
	}
	return cfg, nil
}

// Resolve returns p made absolute against the config file's directory.
// Absolute paths and configs without a file are returned unchanged.
func (c *ProjectConfig) Resolve(p string) string {
	if p == "" || c.Dir == "" {
		return p
	}
	return utils.ResolvePath(p, c.Dir)
}

// findConfigFile walks up from dir looking for .wheel.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, string, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Rubric != "" {
		dst.Paths.Rubric = src.Paths.Rubric
	}
	if src.Paths.Practices != "" {
		dst.Paths.Practices = src.Paths.Practices
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	// Defaults
	if src.Defaults.Format != "" {
		dst.Defaults.Format = src.Defaults.Format
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	if src.Defaults.Nudges != nil {
		dst.Defaults.Nudges = src.Defaults.Nudges
	}
	if src.Defaults.Verbose != nil {
		dst.Defaults.Verbose = src.Defaults.Verbose
	}

	// Decision
	if src.Decision.Approve != nil {
		dst.Decision.Approve = src.Decision.Approve
	}
	if src.Decision.Review != nil {
		dst.Decision.Review = src.Decision.Review
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.ResultsDir != "" {
		dst.Server.ResultsDir = src.Server.ResultsDir
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
}
