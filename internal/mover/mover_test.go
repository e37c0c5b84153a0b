package mover

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xplore-cli/xplore/internal/attr"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// noteOrSkip attaches a note to path, skipping the test when the temp
// filesystem cannot hold attributes.
func noteOrSkip(t *testing.T, s *attr.Store, path, text string) {
	t.Helper()
	err := s.Write(path, text)
	if errors.Is(err, attr.ErrUnsupported) {
		t.Skip("extended attributes unsupported on test filesystem")
	}
	if err != nil {
		t.Fatalf("attach note to %s: %v", path, err)
	}
}

func TestExpandMissingSourceIsFatal(t *testing.T) {
	_, err := Expand(Request{
		Source: filepath.Join(t.TempDir(), "gone"),
		Dest:   filepath.Join(t.TempDir(), "dst"),
	})
	if !errors.Is(err, ErrSourceVanished) {
		t.Fatalf("expected ErrSourceVanished, got %v", err)
	}
}

func TestExpandPreservesRelativeStructure(t *testing.T) {
	src := filepath.Join(t.TempDir(), "tree")
	writeFile(t, filepath.Join(src, "a.txt"), "a")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "b")
	dst := filepath.Join(t.TempDir(), "moved")

	plan, err := Expand(Request{Source: src, Dest: dst})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	if len(plan.Entries) != 4 {
		t.Fatalf("expected 4 entries (root, a.txt, sub, sub/b.txt), got %d", len(plan.Entries))
	}
	if !plan.Entries[0].IsDir || plan.Entries[0].Dest != dst {
		t.Fatalf("expected root directory first, got %+v", plan.Entries[0])
	}

	// Every directory must precede the entries beneath it.
	seenDirs := map[string]bool{}
	for _, e := range plan.Entries {
		if e.IsDir {
			seenDirs[e.Source] = true
			continue
		}
		if parent := filepath.Dir(e.Source); parent != src && !seenDirs[parent] {
			t.Fatalf("file %s planned before its directory", e.Source)
		}
		want := filepath.Join(dst, mustRel(t, src, e.Source))
		if e.Dest != want {
			t.Fatalf("entry %s maps to %s, want %s", e.Source, e.Dest, want)
		}
	}
}

func mustRel(t *testing.T, base, target string) string {
	t.Helper()
	rel, err := filepath.Rel(base, target)
	if err != nil {
		t.Fatalf("rel %s %s: %v", base, target, err)
	}
	return rel
}

func TestMovePreservesNote(t *testing.T) {
	attrs := attr.NewStore(0)
	m := New(attrs)

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	writeFile(t, src, "payload")
	noteOrSkip(t, attrs, src, "the note")

	report, err := m.MoveOrCopy(Request{Source: src, Dest: dst})
	if err != nil {
		t.Fatalf("MoveOrCopy returned error: %v", err)
	}
	if len(report.Outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(report.Outcomes))
	}
	out := report.Outcomes[0]
	if !out.DataMoved || !out.NotePreserved {
		t.Fatalf("expected clean move, got %+v", out)
	}

	note, err := attrs.Read(dst)
	if err != nil {
		t.Fatalf("read note on destination: %v", err)
	}
	if note.Text != "the note" {
		t.Fatalf("note changed in transit: %q", note.Text)
	}
	if _, err := attrs.Read(src); !errors.Is(err, attr.ErrNotFound) {
		t.Fatalf("expected source note gone, got %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source file gone, got %v", err)
	}
}

func TestCopyLeavesSourceIntact(t *testing.T) {
	attrs := attr.NewStore(0)
	m := New(attrs)

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "copy.txt")
	writeFile(t, src, "payload")
	noteOrSkip(t, attrs, src, "shared note")

	report, err := m.MoveOrCopy(Request{Source: src, Dest: dst, Copy: true})
	if err != nil {
		t.Fatalf("MoveOrCopy returned error: %v", err)
	}
	if out := report.Outcomes[0]; !out.DataMoved || !out.NotePreserved {
		t.Fatalf("expected clean copy, got %+v", out)
	}

	for _, path := range []string{src, dst} {
		note, err := attrs.Read(path)
		if err != nil {
			t.Fatalf("read note on %s: %v", path, err)
		}
		if note.Text != "shared note" {
			t.Fatalf("note on %s is %q", path, note.Text)
		}
	}
}

func TestMoveSubtreeCarriesNotes(t *testing.T) {
	attrs := attr.NewStore(0)
	m := New(attrs)

	root := t.TempDir()
	src := filepath.Join(root, "tree")
	writeFile(t, filepath.Join(src, "a.txt"), "a")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "b")
	noteOrSkip(t, attrs, filepath.Join(src, "a.txt"), "note a")
	noteOrSkip(t, attrs, filepath.Join(src, "sub", "b.txt"), "note b")

	dst := filepath.Join(root, "dest")
	report, err := m.MoveOrCopy(Request{Source: src, Dest: dst})
	if err != nil {
		t.Fatalf("MoveOrCopy returned error: %v", err)
	}
	for _, out := range report.Outcomes {
		if !out.DataMoved || !out.NotePreserved {
			t.Fatalf("entry %s did not move cleanly: %+v", out.Source, out)
		}
	}

	for rel, want := range map[string]string{
		"a.txt":      "note a",
		"sub/b.txt":  "note b",
	} {
		note, err := attrs.Read(filepath.Join(dst, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read note on %s: %v", rel, err)
		}
		if note.Text != want {
			t.Fatalf("note on %s is %q, want %q", rel, note.Text, want)
		}
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source tree pruned after move, got %v", err)
	}
}

func TestPartialBatchFailure(t *testing.T) {
	attrs := attr.NewStore(0)
	m := New(attrs)

	root := t.TempDir()
	src := filepath.Join(root, "batch")
	writeFile(t, filepath.Join(src, "one.txt"), "1")
	writeFile(t, filepath.Join(src, "two.txt"), "2")
	writeFile(t, filepath.Join(src, "three.txt"), "3")

	// The destination parent of one entry is a regular file, so its data
	// transfer fails no matter who runs the test.
	dst := filepath.Join(root, "dest")
	plan, err := Expand(Request{Source: src, Dest: dst})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	for i := range plan.Entries {
		if filepath.Base(plan.Entries[i].Source) == "two.txt" {
			blocker := filepath.Join(root, "blocker")
			writeFile(t, blocker, "in the way")
			plan.Entries[i].Dest = filepath.Join(blocker, "two.txt")
		}
	}

	report := m.Execute(plan)
	if len(report.Outcomes) != len(plan.Entries) {
		t.Fatalf("expected %d outcomes, got %d", len(plan.Entries), len(report.Outcomes))
	}

	var failed, succeeded int
	for _, out := range report.Outcomes {
		if out.IsDir {
			continue
		}
		if out.DataMoved {
			succeeded++
			continue
		}
		failed++
		if !errors.Is(out.Reason, ErrDataTransfer) {
			t.Fatalf("expected ErrDataTransfer for %s, got %v", out.Source, out.Reason)
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Fatalf("expected 1 failure and 2 successes, got %d/%d", failed, succeeded)
	}

	// The failed entry still has its data in place.
	if _, err := os.Stat(filepath.Join(src, "two.txt")); err != nil {
		t.Fatalf("failed entry's source should remain: %v", err)
	}
}

func TestReportSummary(t *testing.T) {
	report := Report{Outcomes: []Outcome{
		{DataMoved: true, HadNote: true, NotePreserved: true},
		{DataMoved: true, HadNote: true},
		{DataMoved: true},
		{Reason: ErrDataTransfer},
	}}

	if got := report.Summary(); got != "moved 3/4, notes preserved 1/2" {
		t.Fatalf("unexpected summary %q", got)
	}

	moved, total := report.Moved()
	if moved != 3 || total != 4 {
		t.Fatalf("Moved() = %d/%d", moved, total)
	}
	preserved, noted := report.Preserved()
	if preserved != 1 || noted != 2 {
		t.Fatalf("Preserved() = %d/%d", preserved, noted)
	}
}

// stubNoteStore drives transfer outcomes without a real attribute-capable
// filesystem: notes come from the map, writes answer with writeErr.
type stubNoteStore struct {
	notes    map[string]string
	writeErr error
	readErr  error
}

func (s *stubNoteStore) Read(path string) (attr.Note, error) {
	if s.readErr != nil {
		return attr.Note{}, s.readErr
	}
	text, ok := s.notes[path]
	if !ok {
		return attr.Note{}, attr.ErrNotFound
	}
	return attr.Note{Text: text}, nil
}

func (s *stubNoteStore) Write(path, text string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.notes[path] = text
	return nil
}

func TestMoveToUnsupportedDestinationReportsNoteLoss(t *testing.T) {
	src := filepath.Join(t.TempDir(), "tagged.txt")
	dest := filepath.Join(t.TempDir(), "tagged.txt")
	writeFile(t, src, "payload")

	m := New(&stubNoteStore{
		notes:    map[string]string{src: "do not lose me"},
		writeErr: attr.ErrUnsupported,
	})
	report, err := m.MoveOrCopy(Request{Source: src, Dest: dest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(report.Outcomes))
	}
	out := report.Outcomes[0]
	if !out.DataMoved {
		t.Fatal("data should move even when the destination cannot hold notes")
	}
	if !out.HadNote || out.NotePreserved {
		t.Fatalf("note loss not reported: HadNote=%v NotePreserved=%v", out.HadNote, out.NotePreserved)
	}
	if !errors.Is(out.Reason, attr.ErrUnsupported) {
		t.Fatalf("reason should carry ErrUnsupported, got %v", out.Reason)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination data missing: %v", err)
	}
}

func TestFailedNoteReadIsNotPreservation(t *testing.T) {
	src := filepath.Join(t.TempDir(), "opaque.txt")
	dest := filepath.Join(t.TempDir(), "opaque.txt")
	writeFile(t, src, "payload")

	readErr := errors.New("attr: scrambled attribute block")
	m := New(&stubNoteStore{notes: map[string]string{}, readErr: readErr})
	report, err := m.MoveOrCopy(Request{Source: src, Dest: dest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := report.Outcomes[0]
	if !out.DataMoved {
		t.Fatal("data motion should proceed past a note-read failure")
	}
	if out.NotePreserved {
		t.Fatal("a failed note read must not count as preserved")
	}
	if !errors.Is(out.Reason, readErr) {
		t.Fatalf("reason should carry the read failure, got %v", out.Reason)
	}
}
