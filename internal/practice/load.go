package practice

import (
	"path/filepath"
	"strings"
)

// IsPracticeFile reports whether name has an extension the loader reads.
func IsPracticeFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".csv":
		return true
	}
	return false
}
