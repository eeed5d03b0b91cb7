package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/practice"
	"github.com/aigents/quality-wheel/internal/validation"
)

// expandPaths turns file and directory arguments into a sorted, de-duplicated
// list of practice files. Directories are read non-recursively.
func expandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("loading practices: %w", err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading practice dir %s: %w", arg, err)
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && practice.IsPracticeFile(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, n := range names {
			add(filepath.Join(arg, n))
		}
	}
	return files, nil
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// loadPractices schema-validates each YAML/JSON file and decodes it. CSV
// exports are decoded directly; their column checks happen in the reader.
// Files that fail validation or decoding do not stop the load: they come
// back in the failures map, keyed by path.
func loadPractices(args []string) ([]*models.PracticeInput, map[string]string, error) {
	files, err := expandPaths(args)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no practice files found in %s", strings.Join(args, ", "))
	}

	var all []*models.PracticeInput
	failures := make(map[string]string)
	for _, f := range files {
		ins, err := loadPracticeFile(f)
		if err != nil {
			failures[f] = err.Error()
			continue
		}
		all = append(all, ins...)
	}
	return all, failures, nil
}

func loadPracticeFile(path string) ([]*models.PracticeInput, error) {
	if isCSV(path) {
		return practice.LoadCSV(path)
	}

	errs, err := validation.ValidateFile(path, validation.KindPractice)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("does not match the practice schema: %s", strings.Join(errs, "; "))
	}
	in, err := practice.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*models.PracticeInput{in}, nil
}
