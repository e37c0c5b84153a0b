//go:build !windows

package search

import (
	"fmt"
	"os"
	"syscall"
)

// dirIdentity returns a canonical identity for a directory so revisits
// through symlinks are detected regardless of the path taken.
func dirIdentity(path string, info os.FileInfo) (string, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%d:%d", st.Dev, st.Ino), true
}
