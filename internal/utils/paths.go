package utils

import "path/filepath"

// ResolvePath returns path unchanged when it is absolute or empty,
// otherwise joined onto baseDir.
func ResolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
