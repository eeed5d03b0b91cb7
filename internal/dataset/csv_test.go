package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantRows int
		wantErr  string
	}{
		{
			name:     "scores export",
			csv:      "practice_id,criterion,sub_criterion,score\np1,Q,fullness,8\np1,Q,structure,7\np2,U,benefits,6\n",
			wantRows: 3,
		},
		{
			name:     "headers only",
			csv:      "practice_id,criterion,sub_criterion,score\n",
			wantRows: 0,
		},
		{
			name:     "comment lines skipped",
			csv:      "practice_id,criterion,sub_criterion,score\n# exported 2026-10-01\np1,Q,fullness,8\n",
			wantRows: 1,
		},
		{
			name:    "empty input",
			csv:     "",
			wantErr: "no header row",
		},
		{
			name:    "mismatched column count",
			csv:     "practice_id,score\np1,8\nbad\n",
			wantErr: "wrong number of fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadCSV(strings.NewReader(tt.csv), "test.csv")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
		})
	}
}

func TestReadCSV_ValuesAndLines(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(" Practice_ID , Score\np1, 8.5\np2,  \n"), "x.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "p1", rows[0].Get("practice_id"))
	assert.Equal(t, "8.5", rows[0].Get("score"))
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "", rows[1].Get("score"))
	assert.Equal(t, "", rows[1].Get("missing"))
	assert.Equal(t, 3, rows[1].Line)
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "scores.csv", "practice_id,score\np1,8\n")

	rows, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = LoadCSV(filepath.Join(dir, "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: open")
}

func TestRequireColumns(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("practice_id,score\np1,8\n"), "x.csv")
	require.NoError(t, err)

	require.NoError(t, RequireColumns(rows, "practice_id", "score"))
	err = RequireColumns(rows, "practice_id", "criterion")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"criterion"`)
	require.NoError(t, RequireColumns(nil, "anything"))
}

func TestRange(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("name\na\nb\nc\nd\ne\n"), "x.csv")
	require.NoError(t, err)

	tests := []struct {
		name      string
		start     int
		end       int
		wantNames []string
		wantErr   string
	}{
		{name: "range 2-3 of 5", start: 2, end: 3, wantNames: []string{"b", "c"}},
		{name: "single row", start: 1, end: 1, wantNames: []string{"a"}},
		{name: "end clamps", start: 4, end: 100, wantNames: []string{"d", "e"}},
		{name: "start beyond rows", start: 9, end: 10, wantNames: []string{}},
		{name: "start < 1", start: 0, end: 1, wantErr: "range start must be >= 1"},
		{name: "end < start", start: 3, end: 1, wantErr: "range end (1) must be >= start (3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Range(rows, tt.start, tt.end)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, r := range got {
				names = append(names, r.Get("name"))
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}
