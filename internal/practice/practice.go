// Package practice loads practice scores from YAML, JSON and CSV sources
// into models.PracticeInput values.
package practice

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/aigents/quality-wheel/internal/models"
)

// document is the loose shape of a practice file before sub-scores are
// normalized. A sub-score may be a bare number, null, or {score, details}.
type document struct {
	ID     string                    `mapstructure:"id"`
	Title  string                    `mapstructure:"title"`
	Scores map[string]map[string]any `mapstructure:"scores"`
}

// LoadFile reads one YAML or JSON practice file. When the file has no id,
// its base name without extension is used.
func LoadFile(path string) (*models.PracticeInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading practice %s: %w", path, err)
	}
	in, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading practice %s: %w", path, err)
	}
	if in.ID == "" {
		in.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return in, nil
}

// Parse decodes YAML or JSON practice bytes.
func Parse(data []byte) (*models.PracticeInput, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &models.InvalidInputError{Reason: fmt.Sprintf("parsing practice: %v", err)}
	}
	return FromMap(raw)
}

// FromMap converts a generic decoded document (from YAML or a JSON request
// body) into a PracticeInput.
func FromMap(raw map[string]any) (*models.PracticeInput, error) {
	if raw == nil {
		return nil, &models.InvalidInputError{Reason: "practice document is empty"}
	}

	var doc document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &models.InvalidInputError{Reason: err.Error()}
	}

	in := models.NewPracticeInput(doc.ID)
	in.Title = doc.Title
	for _, code := range sortedKeys(doc.Scores) {
		subs := doc.Scores[code]
		if len(subs) == 0 {
			in.Scores[code] = map[string]models.SubScoreInput{}
			continue
		}
		for _, name := range sortedKeys(subs) {
			entry, err := decodeSubScore(subs[name])
			if err != nil {
				return nil, &models.InvalidInputError{
					Criterion:    code,
					SubCriterion: name,
					Value:        subs[name],
					Reason:       err.Error(),
				}
			}
			in.Set(code, name, entry)
		}
	}
	return in, nil
}

func decodeSubScore(v any) (models.SubScoreInput, error) {
	switch val := v.(type) {
	case nil:
		return models.SubScoreInput{}, nil
	case map[string]any:
		var out models.SubScoreInput
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &out,
			ErrorUnused: true,
		})
		if err != nil {
			return out, err
		}
		if err := dec.Decode(val); err != nil {
			return out, err
		}
		return out, nil
	default:
		f, ok := toFloat(val)
		if !ok {
			return models.SubScoreInput{}, fmt.Errorf("score must be a number, got %T", v)
		}
		return models.SubScoreInput{Score: &f}, nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
