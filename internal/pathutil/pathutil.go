package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's
// separator and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// ExpandHome resolves a leading ~ against the current user's home
// directory. Paths without the prefix pass through normalized.
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err == nil {
			return NormalizePath(filepath.Join(home, p[1:]))
		}
	}
	return NormalizePath(p)
}

// Abs normalizes p and makes it absolute relative to the working directory.
func Abs(p string) (string, error) {
	abs, err := filepath.Abs(NormalizePath(p))
	if err != nil {
		return "", err
	}
	return abs, nil
}
