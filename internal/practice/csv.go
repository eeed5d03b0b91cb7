package practice

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aigents/quality-wheel/internal/dataset"
	"github.com/aigents/quality-wheel/internal/models"
)

// CSV column names. title is optional.
const (
	ColumnPracticeID   = "practice_id"
	ColumnTitle        = "title"
	ColumnCriterion    = "criterion"
	ColumnSubCriterion = "sub_criterion"
	ColumnScore        = "score"
)

// LoadCSV reads a long-format score export, one sub-score per row, and
// groups rows into practices in order of first appearance.
func LoadCSV(path string) ([]*models.PracticeInput, error) {
	rows, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return fromRows(rows, path)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, name string) ([]*models.PracticeInput, error) {
	rows, err := dataset.ReadCSV(r, name)
	if err != nil {
		return nil, err
	}
	return fromRows(rows, name)
}

// LoadCSVRange is LoadCSV restricted to data rows [start, end] (1-based).
func LoadCSVRange(path string, start, end int) ([]*models.PracticeInput, error) {
	rows, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	rows, err = dataset.Range(rows, start, end)
	if err != nil {
		return nil, err
	}
	return fromRows(rows, path)
}

func fromRows(rows []dataset.Row, name string) ([]*models.PracticeInput, error) {
	if err := dataset.RequireColumns(rows, ColumnPracticeID, ColumnCriterion, ColumnSubCriterion, ColumnScore); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var order []*models.PracticeInput
	byID := make(map[string]*models.PracticeInput)

	for _, row := range rows {
		id := row.Get(ColumnPracticeID)
		criterion := row.Get(ColumnCriterion)
		sub := row.Get(ColumnSubCriterion)
		if id == "" || criterion == "" || sub == "" {
			return nil, fmt.Errorf("csv: %s line %d: practice_id, criterion and sub_criterion are required", name, row.Line)
		}

		in, ok := byID[id]
		if !ok {
			in = models.NewPracticeInput(id)
			byID[id] = in
			order = append(order, in)
		}
		if title := row.Get(ColumnTitle); title != "" && in.Title == "" {
			in.Title = title
		}

		raw := row.Get(ColumnScore)
		if raw == "" {
			in.Set(criterion, sub, models.SubScoreInput{})
			continue
		}
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("csv: %s line %d: %w", name, row.Line, &models.InvalidInputError{
				Criterion:    criterion,
				SubCriterion: sub,
				Value:        raw,
				Reason:       "score must be a number",
			})
		}
		in.SetScore(criterion, sub, score)
	}
	return order, nil
}
