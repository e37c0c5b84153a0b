package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xplore-cli/xplore/internal/attr"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// collect drains both session streams until the traversal ends.
func collect(s *Session) ([]Match, []Diag) {
	var matches []Match
	var diags []Diag

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range s.Diags() {
			diags = append(diags, d)
		}
	}()

	for m := range s.Matches() {
		matches = append(matches, m)
	}
	<-done
	return matches, diags
}

func TestStartRejectsBadRoot(t *testing.T) {
	e := NewEngine(attr.NewStore(0))

	if _, err := e.Start(context.Background(), Query{Pattern: "x", Root: filepath.Join(t.TempDir(), "gone")}); !errors.Is(err, ErrBadRoot) {
		t.Fatalf("expected ErrBadRoot for missing root, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "plain.txt")
	writeFile(t, file)
	if _, err := e.Start(context.Background(), Query{Pattern: "x", Root: file}); !errors.Is(err, ErrBadRoot) {
		t.Fatalf("expected ErrBadRoot for non-directory root, got %v", err)
	}
}

func TestSearchMatchesNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "invoice-2023.pdf"))
	writeFile(t, filepath.Join(root, "sub", "old-invoice.pdf"))
	writeFile(t, filepath.Join(root, "sub", "photo.jpg"))

	e := NewEngine(attr.NewStore(0))
	s, err := e.Start(context.Background(), Query{Pattern: "invoice", MatchNames: true, Root: root})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	matches, diags := collect(s)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", matches)
	}
	for _, m := range matches {
		if m.Kind != MatchedName {
			t.Fatalf("expected name match for %s, got %s", m.Path, m.Kind)
		}
	}
	if got := s.Wait(); got != StateCompleted {
		t.Fatalf("expected completed state, got %s", got)
	}
}

func TestSearchMatchesNotes(t *testing.T) {
	root := t.TempDir()
	attrs := attr.NewStore(0)
	noted := filepath.Join(root, "scan001.pdf")
	writeFile(t, noted)
	writeFile(t, filepath.Join(root, "scan002.pdf"))

	if err := attrs.Write(noted, "insurance paperwork\nsecond line"); err != nil {
		if errors.Is(err, attr.ErrUnsupported) {
			t.Skip("extended attributes unsupported on test filesystem")
		}
		t.Fatalf("attach note: %v", err)
	}

	e := NewEngine(attrs)
	s, err := e.Start(context.Background(), Query{Pattern: "insurance", MatchNames: true, MatchNotes: true, Root: root})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	matches, _ := collect(s)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %+v", matches)
	}
	m := matches[0]
	if m.Path != noted || m.Kind != MatchedNote {
		t.Fatalf("unexpected match %+v", m)
	}
	if m.Excerpt != "insurance paperwork" {
		t.Fatalf("unexpected excerpt %q", m.Excerpt)
	}
}

func TestSearchMatchesBothDimensions(t *testing.T) {
	root := t.TempDir()
	attrs := attr.NewStore(0)
	path := filepath.Join(root, "taxes-2023.pdf")
	writeFile(t, path)

	if err := attrs.Write(path, "taxes for the old flat"); err != nil {
		if errors.Is(err, attr.ErrUnsupported) {
			t.Skip("extended attributes unsupported on test filesystem")
		}
		t.Fatalf("attach note: %v", err)
	}

	e := NewEngine(attrs)
	s, err := e.Start(context.Background(), Query{Pattern: "taxes", MatchNames: true, MatchNotes: true, Root: root})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	matches, _ := collect(s)
	if len(matches) != 1 || matches[0].Kind != MatchedBoth {
		t.Fatalf("expected one name+note match, got %+v", matches)
	}
}

func TestSearchCompletesAroundUnreadableSubtree(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "visible", "target.txt"))
	blocked := filepath.Join(root, "blocked")
	writeFile(t, filepath.Join(blocked, "hidden-target.txt"))
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	e := NewEngine(attr.NewStore(0))
	s, err := e.Start(context.Background(), Query{Pattern: "target", MatchNames: true, Root: root})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	matches, diags := collect(s)
	if len(matches) != 1 || filepath.Base(matches[0].Path) != "target.txt" {
		t.Fatalf("expected the reachable match, got %+v", matches)
	}
	if len(diags) != 1 || diags[0].Path != blocked {
		t.Fatalf("expected one diagnostic for %s, got %+v", blocked, diags)
	}
	if got := s.Wait(); got != StateCompleted {
		t.Fatalf("an obstructed subtree must not prevent completion, got %s", got)
	}
}

func TestSearchSkipsSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b", "findme.txt"))
	loop := filepath.Join(root, "a", "b", "loop")
	if err := os.Symlink(filepath.Join(root, "a"), loop); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	e := NewEngine(attr.NewStore(0))
	s, err := e.Start(context.Background(), Query{Pattern: "findme", MatchNames: true, Root: root})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	matches, diags := collect(s)
	if len(matches) != 1 {
		t.Fatalf("expected exactly one match despite the cycle, got %+v", matches)
	}

	var cycles int
	for _, d := range diags {
		if IsCycle(d.Err) {
			cycles++
			if d.Path != loop {
				t.Fatalf("cycle reported at %s, want %s", d.Path, loop)
			}
		}
	}
	if cycles != 1 {
		t.Fatalf("expected the cycle reported once, got %d", cycles)
	}
	if got := s.Wait(); got != StateCompleted {
		t.Fatalf("expected completion, got %s", got)
	}
}

func TestSearchCancellation(t *testing.T) {
	root := t.TempDir()
	// Enough entries that the walk cannot finish before the buffered
	// channel fills, guaranteeing the cancel lands mid-flight.
	for dir := 0; dir < 20; dir++ {
		for file := 0; file < 20; file++ {
			writeFile(t, filepath.Join(root, fmt.Sprintf("d%02d", dir), fmt.Sprintf("match-%02d.txt", file)))
		}
	}

	e := NewEngine(attr.NewStore(0))
	s, err := e.Start(context.Background(), Query{Pattern: "match", MatchNames: true, Root: root})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	s.Cancel()
	if got := s.Wait(); got != StateCancelled {
		t.Fatalf("expected cancelled state, got %s", got)
	}

	matches, _ := collect(s)
	if len(matches) >= 400 {
		t.Fatalf("cancelled search still produced the full result set (%d matches)", len(matches))
	}

	// Channels are closed; no further matches can arrive.
	if _, ok := <-s.Matches(); ok {
		t.Fatal("match emitted after cancellation was observed")
	}
}

func TestSearchStreamsWithoutBufferingEverything(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < matchBuffer*4; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("match-%03d.txt", i)))
	}

	e := NewEngine(attr.NewStore(0))
	s, err := e.Start(context.Background(), Query{Pattern: "match", MatchNames: true, Root: root})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	// The first match must be consumable while the walk is still running;
	// a full-materialization engine would block here until completion.
	first, ok := <-s.Matches()
	if !ok {
		t.Fatal("expected at least one match")
	}
	if first.Kind != MatchedName {
		t.Fatalf("unexpected first match %+v", first)
	}

	rest, _ := collect(s)
	if got := len(rest) + 1; got != matchBuffer*4 {
		t.Fatalf("expected %d matches, got %d", matchBuffer*4, got)
	}
}
