// Package mover moves and copies files while carrying their notes along,
// reporting per-entry what survived instead of pretending the operation is
// atomic.
package mover

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xplore-cli/xplore/internal/attr"
)

// ErrDataTransfer marks an entry whose underlying move or copy of bytes
// failed. The remaining plan still executes.
var ErrDataTransfer = errors.New("mover: data transfer failed")

// Outcome records the fate of one planned entry. Every planned entry gets
// exactly one.
type Outcome struct {
	Entry
	DataMoved     bool
	HadNote       bool
	NotePreserved bool
	Reason        error
}

// Report aggregates the outcomes of one executed plan.
type Report struct {
	Outcomes []Outcome
}

// Moved returns how many entries had their data transferred, and the total.
func (r Report) Moved() (moved, total int) {
	for _, o := range r.Outcomes {
		if o.DataMoved {
			moved++
		}
	}
	return moved, len(r.Outcomes)
}

// Preserved returns how many notes survived, out of the transferred entries
// that carried one.
func (r Report) Preserved() (preserved, noted int) {
	for _, o := range r.Outcomes {
		if !o.DataMoved || !o.HadNote {
			continue
		}
		noted++
		if o.NotePreserved {
			preserved++
		}
	}
	return preserved, noted
}

// Summary renders the aggregate counts the way the UI reports them.
func (r Report) Summary() string {
	moved, total := r.Moved()
	preserved, noted := r.Preserved()
	if noted == 0 {
		return fmt.Sprintf("moved %d/%d", moved, total)
	}
	return fmt.Sprintf("moved %d/%d, notes preserved %d/%d", moved, total, preserved, noted)
}

// noteStore is the slice of the attribute store a transfer needs: capture
// the source note, reapply it at the destination.
type noteStore interface {
	Read(path string) (attr.Note, error)
	Write(path, text string) error
}

// Mover executes move/copy plans. It runs synchronously relative to its
// caller and assumes exclusive access to the plan's paths for the duration
// of one Execute.
type Mover struct {
	attrs noteStore
}

func New(attrs noteStore) *Mover {
	return &Mover{attrs: attrs}
}

// MoveOrCopy expands the request and executes it. Only planning can fail
// outright; execution always returns a full report.
func (m *Mover) MoveOrCopy(req Request) (Report, error) {
	plan, err := Expand(req)
	if err != nil {
		return Report{}, err
	}
	return m.Execute(plan), nil
}

// Execute runs the plan entry by entry. Each entry's note is read before
// its data is touched, the data rides the host's native rename/copy, and
// the captured note is reapplied to the destination afterwards. One entry's
// failure never aborts the rest.
func (m *Mover) Execute(plan Plan) Report {
	report := Report{Outcomes: make([]Outcome, 0, len(plan.Entries))}

	for _, entry := range plan.Entries {
		report.Outcomes = append(report.Outcomes, m.transfer(entry, plan.Copy))
	}

	if !plan.Copy {
		m.pruneSourceDirs(plan, report)
	}
	return report
}

func (m *Mover) transfer(entry Entry, copyMode bool) Outcome {
	out := Outcome{Entry: entry}

	// Capture the note first so its content survives even if the data
	// motion fails midway.
	note, err := m.attrs.Read(entry.Source)
	switch {
	case err == nil:
		out.HadNote = true
	case errors.Is(err, attr.ErrNotFound), errors.Is(err, attr.ErrUnsupported):
		// No note to carry.
	default:
		out.Reason = err
	}

	if err := m.transferData(entry, copyMode); err != nil {
		out.Reason = fmt.Errorf("%w: %v", ErrDataTransfer, err)
		return out
	}
	out.DataMoved = true

	if !out.HadNote {
		// A failed note read is a preservation failure even though the
		// data moved; only a genuinely note-less entry counts as preserved.
		out.NotePreserved = out.Reason == nil
		return out
	}
	if err := m.attrs.Write(entry.Dest, note.Text); err != nil {
		out.Reason = err
		return out
	}
	out.NotePreserved = true
	return out
}

func (m *Mover) transferData(entry Entry, copyMode bool) error {
	if entry.IsDir {
		info, err := os.Stat(entry.Source)
		if err != nil {
			return err
		}
		return os.MkdirAll(entry.Dest, info.Mode().Perm())
	}
	if copyMode {
		return copyFile(entry.Source, entry.Dest)
	}
	return moveFile(entry.Source, entry.Dest)
}

// moveFile prefers the native rename so permissions, timestamps, and
// attributes ride along for free; crossing a device boundary falls back to
// copy-then-remove, with the caller reapplying the note afterwards.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !crossDevice(err) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	// Carry the source timestamps; failure here is cosmetic.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// pruneSourceDirs removes the now-empty source directories of a move,
// deepest first. Directories still holding entries that failed to move are
// left in place.
func (m *Mover) pruneSourceDirs(plan Plan, report Report) {
	for i := len(plan.Entries) - 1; i >= 0; i-- {
		entry := plan.Entries[i]
		if !entry.IsDir || !report.Outcomes[i].DataMoved {
			continue
		}
		_ = os.Remove(entry.Source)
	}
}
