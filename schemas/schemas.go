// Package schemas embeds the JSON Schemas for practice and rubric files.
package schemas

import _ "embed"

// PracticeSchemaJSON is the schema for practice score files (YAML or JSON).
//
//go:embed practice.schema.json
var PracticeSchemaJSON string

// RubricSchemaJSON is the schema for rubric YAML files.
//
//go:embed rubric.schema.json
var RubricSchemaJSON string
