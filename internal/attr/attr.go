// Package attr stores per-file notes in filesystem extended attributes.
package attr

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Name of the attribute holding the note text. The port implementations
// translate this to their platform's namespace.
const NoteAttribute = "user.xplore.note"

var (
	// ErrUnsupported signals the target filesystem cannot hold attributes.
	// It is informational, not a failure: callers treat it as "no note
	// possible here".
	ErrUnsupported = errors.New("attr: attributes unsupported on target")

	// ErrNotFound signals no note is present on the path.
	ErrNotFound = errors.New("attr: note not found")

	// ErrTooLarge signals the note exceeds the filesystem's attribute size
	// ceiling. Writes failing with it leave any prior note unmodified.
	ErrTooLarge = errors.New("attr: note exceeds attribute size limit")

	// ErrPermission signals an access-level failure on the attribute call.
	ErrPermission = errors.New("attr: permission denied")
)

// Note is the user-authored text attached to a file. It is stored as the raw
// UTF-8 bytes of Text in a single named attribute, no header or framing.
type Note struct {
	Text string
}

// Len returns the encoded size of the note in bytes.
func (n Note) Len() int {
	return len(n.Text)
}

// Store reads and writes notes through the platform attribute port. All
// operations are synchronous and no note state is retained between calls.
// A Store is safe for concurrent use across distinct paths; callers
// serialize edits of the same path.
type Store struct {
	port     port
	override int
}

// NewStore returns a Store backed by the platform's attribute mechanism.
// A positive limitOverride lowers the per-filesystem size ceiling; it can
// never raise it above what the platform allows.
func NewStore(limitOverride int) *Store {
	return &Store{port: newPort(), override: limitOverride}
}

// Limit reports the note size ceiling in bytes that applies to path.
func (s *Store) Limit(path string) int {
	limit := s.port.limit(path)
	if s.override > 0 && s.override < limit {
		return s.override
	}
	return limit
}

// Read returns the note attached to path. A missing attribute or a payload
// that is not valid UTF-8 reports ErrNotFound; a filesystem without
// attribute support reports ErrUnsupported.
func (s *Store) Read(path string) (Note, error) {
	data, err := s.port.get(path, NoteAttribute)
	if err != nil {
		return Note{}, err
	}
	if !utf8.Valid(data) {
		return Note{}, ErrNotFound
	}
	return Note{Text: string(data)}, nil
}

// Write attaches the note text to path, replacing any prior note. Oversized
// notes are rejected with ErrTooLarge before any I/O, leaving a prior note
// untouched.
func (s *Store) Write(path, text string) error {
	n := Note{Text: text}
	if limit := s.Limit(path); n.Len() > limit {
		return fmt.Errorf("attr: note is %d bytes, limit on %s is %d: %w",
			n.Len(), path, limit, ErrTooLarge)
	}
	return s.port.set(path, NoteAttribute, []byte(n.Text))
}

// Remove deletes the note from path. Removing an absent note reports
// ErrNotFound.
func (s *Store) Remove(path string) error {
	return s.port.remove(path, NoteAttribute)
}

// Supported reports whether path can hold notes at all. It never errors;
// probe failures count as unsupported.
func (s *Store) Supported(path string) bool {
	return s.port.supported(path)
}

// port is the platform boundary: the only place aware of whether notes ride
// on POSIX extended attributes or the Windows alternate-data-stream
// emulation. Implementations are selected by build tags.
type port interface {
	get(path, name string) ([]byte, error)
	set(path, name string, data []byte) error
	remove(path, name string) error
	list(path string) ([]string, error)
	supported(path string) bool
	limit(path string) int
}
