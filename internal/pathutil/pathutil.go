package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's
// separator and cleans the result.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// Absolute normalizes p and anchors it at the working directory.
func Absolute(p string) string {
	normalized := NormalizePath(p)
	if normalized == "" {
		return ""
	}
	if abs, err := filepath.Abs(normalized); err == nil {
		return abs
	}
	return normalized
}

// SamePath reports whether a and b name the same location once normalized.
func SamePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return Absolute(a) == Absolute(b)
}
