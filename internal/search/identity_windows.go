package search

import (
	"os"
	"path/filepath"
	"strings"
)

// dirIdentity returns a canonical identity for a directory. Windows file
// info carries no inode, so the fully resolved path stands in.
func dirIdentity(path string, info os.FileInfo) (string, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	return strings.ToLower(resolved), true
}
