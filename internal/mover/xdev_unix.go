//go:build !windows

package mover

import (
	"errors"
	"syscall"
)

// crossDevice reports whether a rename failed because source and
// destination live on different filesystems.
func crossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
