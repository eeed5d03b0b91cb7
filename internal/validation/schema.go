package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/rubric"
	"github.com/aigents/quality-wheel/schemas"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// practiceSchema is the compiled JSON Schema for practice score files.
var practiceSchema *jsonschema.Schema

// rubricSchema is the compiled JSON Schema for rubric files.
var rubricSchema *jsonschema.Schema

func init() {
	practiceSchema = mustCompileSchema(schemas.PracticeSchemaJSON, "practice.schema.json")
	rubricSchema = mustCompileSchema(schemas.RubricSchemaJSON, "rubric.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Kind selects which schema a file is checked against.
type Kind string

const (
	KindPractice Kind = "practice"
	KindRubric   Kind = "rubric"
)

// ValidateFile reads path and validates it against the schema for kind.
// JSON files are accepted since YAML is a superset.
func ValidateFile(path string, kind Kind) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s file: %w", kind, err)
	}
	switch kind {
	case KindPractice:
		return ValidatePracticeBytes(data), nil
	case KindRubric:
		return ValidateRubricBytes(data), nil
	default:
		return nil, fmt.Errorf("unknown file kind %q", kind)
	}
}

// DetectKind guesses whether a document is a rubric or a practice file.
// Documents with top-level criteria, criterion_weights or overrides are rubrics.
func DetectKind(data []byte) Kind {
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return KindPractice
	}
	for _, key := range []string{"criteria", "criterion_weights", "overrides"} {
		if _, ok := top[key]; ok {
			return KindRubric
		}
	}
	return KindPractice
}

// ValidatePracticeBytes validates raw YAML or JSON bytes against the practice schema.
func ValidatePracticeBytes(data []byte) []string {
	return validateYAMLBytes(practiceSchema, data)
}

// ValidateRubricBytes validates raw YAML bytes against the rubric schema.
func ValidateRubricBytes(data []byte) []string {
	return validateYAMLBytes(rubricSchema, data)
}

// CheckAgainstRubric reports criteria and sub-criteria in the practice that
// the rubric snapshot does not define, plus required sub-criteria with no score.
// Problems are returned sorted so output is stable.
func CheckAgainstRubric(snap *rubric.Snapshot, in *models.PracticeInput) []string {
	if snap == nil || in == nil {
		return nil
	}
	var errs []string
	for code, subs := range in.Scores {
		spec, ok := snap.Criterion(code)
		if !ok {
			errs = append(errs, fmt.Sprintf("/scores/%s: unknown criterion", code))
			continue
		}
		for name := range subs {
			if _, ok := spec.SubCriterion(name); !ok {
				errs = append(errs, fmt.Sprintf("/scores/%s/%s: unknown sub-criterion", code, name))
			}
		}
	}
	for _, spec := range snap.Criteria {
		for _, sub := range spec.SubCriteria {
			if !sub.Required {
				continue
			}
			if _, ok := in.Lookup(spec.Code, sub.Name); !ok {
				errs = append(errs, fmt.Sprintf("/scores/%s/%s: required sub-criterion has no score", spec.Code, sub.Name))
			}
		}
	}
	sort.Strings(errs)
	return errs
}

func validateYAMLBytes(schema *jsonschema.Schema, data []byte) []string {
	// Parse YAML into generic any
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	if yamlDoc == nil {
		yamlDoc = map[string]any{}
	}

	return validateAgainstSchema(schema, convertToJSONCompatible(yamlDoc))
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible converts YAML-decoded values to JSON-compatible types.
// Maps with non-string keys (e.g. a sub-criterion named 1) get stringified keys.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[fmt.Sprint(k)] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
