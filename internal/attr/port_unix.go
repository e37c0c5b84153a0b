//go:build !windows

package attr

import (
	"errors"
	"os"
	"syscall"

	"github.com/pkg/xattr"
)

// unixPort rides on POSIX extended attributes via pkg/xattr.
type unixPort struct{}

func newPort() port {
	return unixPort{}
}

func (unixPort) get(path, name string) ([]byte, error) {
	data, err := xattr.Get(path, name)
	if err != nil {
		return nil, mapXattrErr(path, err)
	}
	return data, nil
}

func (unixPort) set(path, name string, data []byte) error {
	if err := xattr.Set(path, name, data); err != nil {
		return mapXattrErr(path, err)
	}
	return nil
}

func (unixPort) remove(path, name string) error {
	if err := xattr.Remove(path, name); err != nil {
		return mapXattrErr(path, err)
	}
	return nil
}

func (unixPort) list(path string) ([]string, error) {
	names, err := xattr.List(path)
	if err != nil {
		return nil, mapXattrErr(path, err)
	}
	return names, nil
}

func (unixPort) supported(path string) bool {
	if !xattr.XATTR_SUPPORTED {
		return false
	}
	if _, err := xattr.List(path); err != nil {
		return !errors.Is(mapXattrErr(path, err), ErrUnsupported)
	}
	return true
}

func (unixPort) limit(path string) int {
	return filesystemLimit(path)
}

// mapXattrErr folds syscall-level attribute errors into the package
// taxonomy. Anything unrecognized passes through so the caller still sees
// the underlying failure.
func mapXattrErr(path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, xattr.ENOATTR) {
		return ErrNotFound
	}
	// pkg/xattr wraps errnos in its own error type, so the vanished-path
	// case needs the unwrapping form, not os.IsNotExist.
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOENT) {
		return ErrNotFound
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		// ENOTSUP and EOPNOTSUPP share a value on Linux, so no switch here.
		if errno == syscall.ENOTSUP || errno == syscall.EOPNOTSUPP {
			return ErrUnsupported
		}
		if errno == syscall.EACCES || errno == syscall.EPERM {
			return ErrPermission
		}
		if errno == syscall.E2BIG || errno == syscall.ENOSPC ||
			errno == syscall.EDQUOT || errno == syscall.ERANGE {
			return ErrTooLarge
		}
	}
	return err
}
