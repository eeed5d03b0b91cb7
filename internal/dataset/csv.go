// Package dataset reads tabular score exports.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row represents a single CSV row with column name to value mapping.
// Line is the 1-based line number in the source file.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers (column names).
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, path)
}

// ReadCSV parses CSV from r; name is only used in error messages.
// Header cells are trimmed and lower-cased.
func ReadCSV(r io.Reader, name string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", name, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", name)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		row := Row{Line: i + 2, Values: make(map[string]string, len(headers))}
		for j, h := range headers {
			row.Values[h] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// RequireColumns returns an error naming the first column of want that is
// missing from rows. An empty row set passes.
func RequireColumns(rows []Row, want ...string) error {
	if len(rows) == 0 {
		return nil
	}
	for _, col := range want {
		if _, ok := rows[0].Values[col]; !ok {
			return fmt.Errorf("csv: missing required column %q", col)
		}
	}
	return nil
}

// Range returns rows in [start, end] (1-based, inclusive) where row 1 is
// the first data row. end is clamped to the available rows.
func Range(rows []Row, start, end int) ([]Row, error) {
	if start < 1 {
		return nil, fmt.Errorf("csv: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("csv: range end (%d) must be >= start (%d)", end, start)
	}

	// Clamp end to available rows
	if end > len(rows) {
		end = len(rows)
	}

	// If start is beyond available rows, return empty
	if start > len(rows) {
		return []Row{}, nil
	}

	return rows[start-1 : end], nil
}
