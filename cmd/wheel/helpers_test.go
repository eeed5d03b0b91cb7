package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const approvedPractice = `id: prac-approved
title: Structured prompt templates
scores:
  Q: {fullness: 8, structure: 8, examples: 8, limitations: 8}
  R: {steps_clarity: 8, requirements: 8, resources: 8}
  U: {problem_clarity: 8, benefits: 8, efficiency: 8}
  A: {universality: 8, scalability: 8, constraints: 8}
  I: {novelty: 8, tech_complexity: 8, potential: 8}
  Rel:
    empirical_validation: 8
    methodology: 8
    adaptability: 8
    external_validation: {score: 8, details: {source: pilot}}
`

const weakPractice = `id: prac-weak
title: Ad-hoc chat usage
scores:
  Q: {fullness: 8, structure: 7, examples: 9}
  R: {steps_clarity: 4, requirements: 7, resources: 7}
`

// chdirTemp runs the test in a fresh directory so no .wheel.yaml above the
// package leaks into the command under test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewReader(nil))
	err := cmd.Execute()
	return out.String(), err
}
