package rubric

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aigents/quality-wheel/internal/models"
)

// File is the on-disk YAML form of a rubric. Criteria, when present, replace
// the built-in rubric; Overrides are applied afterwards through
// AdjustThreshold, in file order.
type File struct {
	Criteria         []fileCriterion    `yaml:"criteria,omitempty"`
	CriterionWeights map[string]float64 `yaml:"criterion_weights,omitempty"`
	Overrides        []Override         `yaml:"overrides,omitempty"`
}

type fileCriterion struct {
	Code        string            `yaml:"code"`
	Name        string            `yaml:"name"`
	SubCriteria []fileSubCriterion `yaml:"sub_criteria"`
}

type fileSubCriterion struct {
	Name         string   `yaml:"name"`
	Weight       float64  `yaml:"weight"`
	MinThreshold *float64 `yaml:"min_threshold,omitempty"`
	Required     bool     `yaml:"required"`
}

// Override is one adjustThreshold call recorded in a rubric file.
type Override struct {
	Criterion       string `yaml:"criterion"`
	SubCriterion    string `yaml:"sub_criterion"`
	ThresholdUpdate `yaml:",inline"`
}

// LoadFile reads a rubric YAML file and returns a validated Config.
func LoadFile(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric %s: %w", path, err)
	}
	cfg, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading rubric %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes rubric YAML bytes into a validated Config.
func Parse(data []byte, opts ...Option) (*Config, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, &models.ConfigurationError{Reason: fmt.Sprintf("parsing rubric YAML: %v", err)}
	}

	criteria := DefaultCriteria()
	if len(f.Criteria) > 0 {
		criteria = make([]CriterionSpec, 0, len(f.Criteria))
		for _, fc := range f.Criteria {
			spec := CriterionSpec{Code: fc.Code, Name: fc.Name}
			for _, fs := range fc.SubCriteria {
				threshold := DefaultMinThreshold
				if fs.MinThreshold != nil {
					threshold = *fs.MinThreshold
				}
				spec.SubCriteria = append(spec.SubCriteria, SubCriterionSpec{
					Name:         fs.Name,
					Weight:       fs.Weight,
					MinThreshold: threshold,
					Required:     fs.Required,
				})
			}
			criteria = append(criteria, spec)
		}
	}

	cfg, err := New(criteria, f.CriterionWeights, opts...)
	if err != nil {
		return nil, err
	}
	for _, o := range f.Overrides {
		if err := cfg.AdjustThreshold(o.Criterion, o.SubCriterion, o.ThresholdUpdate); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Marshal renders a snapshot as rubric YAML that Parse reads back to the same rubric.
func Marshal(s *Snapshot) ([]byte, error) {
	f := File{CriterionWeights: s.CriterionWeights}
	for _, c := range s.Criteria {
		fc := fileCriterion{Code: c.Code, Name: c.Name}
		for _, sc := range c.SubCriteria {
			threshold := sc.MinThreshold
			fc.SubCriteria = append(fc.SubCriteria, fileSubCriterion{
				Name:         sc.Name,
				Weight:       sc.Weight,
				MinThreshold: &threshold,
				Required:     sc.Required,
			})
		}
		f.Criteria = append(f.Criteria, fc)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return nil, fmt.Errorf("encoding rubric: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding rubric: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile persists the config's current snapshot to path.
func WriteFile(path string, c *Config) error {
	data, err := Marshal(c.Snapshot())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rubric %s: %w", path, err)
	}
	slog.Debug("rubric written", "path", path, "version", c.Version())
	return nil
}
