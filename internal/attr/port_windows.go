package attr

import (
	"errors"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// NTFS has no practical per-stream size cap, so notes on Windows are bound
// by this ceiling (lowerable via the config override) instead of a probed
// filesystem figure.
const adsLimit = 64 * 1024

// windowsPort emulates extended attributes with NTFS alternate data
// streams: the note lives in a named stream on the file itself.
type windowsPort struct{}

func newPort() port {
	return windowsPort{}
}

// streamPath maps an attribute name to the backing stream, dropping the
// POSIX "user." namespace prefix.
func streamPath(path, name string) string {
	return path + ":" + strings.TrimPrefix(name, "user.")
}

func (windowsPort) get(path, name string) ([]byte, error) {
	data, err := os.ReadFile(streamPath(path, name))
	if err != nil {
		return nil, mapStreamErr(path, err)
	}
	return data, nil
}

func (p windowsPort) set(path, name string, data []byte) error {
	// Streams can only attach to existing files.
	if _, err := os.Stat(path); err != nil {
		return mapStreamErr(path, err)
	}
	if err := os.WriteFile(streamPath(path, name), data, 0o644); err != nil {
		return mapStreamErr(path, err)
	}
	return nil
}

func (windowsPort) remove(path, name string) error {
	if err := os.Remove(streamPath(path, name)); err != nil {
		return mapStreamErr(path, err)
	}
	return nil
}

func (p windowsPort) list(path string) ([]string, error) {
	// Stream enumeration is not needed beyond the note itself; report the
	// note attribute when its stream exists.
	if _, err := p.get(path, NoteAttribute); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []string{NoteAttribute}, nil
}

func (windowsPort) supported(path string) bool {
	abs, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}

	volume := make([]uint16, windows.MAX_PATH+1)
	if err := windows.GetVolumePathName(abs, &volume[0], uint32(len(volume))); err != nil {
		return false
	}

	var flags uint32
	err = windows.GetVolumeInformation(&volume[0], nil, 0, nil, nil, &flags, nil, 0)
	if err != nil {
		return false
	}
	return flags&windows.FILE_NAMED_STREAMS != 0
}

func (windowsPort) limit(path string) int {
	return adsLimit
}

func mapStreamErr(path string, err error) error {
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if os.IsPermission(err) {
		return ErrPermission
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case windows.ERROR_INVALID_NAME, windows.ERROR_INVALID_PARAMETER:
			// The volume rejected the stream syntax: FAT-family media.
			return ErrUnsupported
		case windows.ERROR_DISK_FULL:
			return ErrTooLarge
		}
	}
	return err
}
