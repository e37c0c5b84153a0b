package search

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/xplore-cli/xplore/internal/attr"
	"github.com/xplore-cli/xplore/internal/config"
	"github.com/xplore-cli/xplore/internal/mover"
	"github.com/xplore-cli/xplore/internal/search"
	"github.com/xplore-cli/xplore/internal/state"
)

func testState(t *testing.T) *state.State {
	t.Helper()
	attrs := attr.NewStore(0)
	return &state.State{
		Config: &config.Config{},
		Attrs:  attrs,
		Mover:  mover.New(attrs),
		Engine: search.NewEngine(attrs),
	}
}

func testCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd, out, errOut
}

func TestRunStreamsNameMatches(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"invoice-jan.pdf", "invoice-feb.pdf", "photo.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cmd, out, errOut := testCommand()
	if err := run(cmd, testState(t), "invoice", options{root: dir}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Count(out.String(), "invoice"); got != 2 {
		t.Fatalf("expected 2 matches in output, got %d:\n%s", got, out.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", errOut.String())
	}
}

func TestRunModifiedSinceFilter(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "report-old.txt")
	fresh := filepath.Join(dir, "report-new.txt")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	cmd, out, _ := testCommand()
	opts := options{root: dir, modifiedSince: time.Now().Add(-time.Hour).Format("2006-01-02 15:04:05")}
	if err := run(cmd, testState(t), "report", opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(out.String(), "report-old") {
		t.Fatalf("stale entry should be filtered out:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "report-new") {
		t.Fatalf("fresh entry missing:\n%s", out.String())
	}
}

func TestRunRejectsConflictingScopes(t *testing.T) {
	cmd, _, _ := testCommand()
	err := run(cmd, testState(t), "x", options{root: ".", namesOnly: true, notesOnly: true})
	if err == nil {
		t.Fatal("expected an error for --names-only with --notes-only")
	}
}

func TestRunBadDateRejected(t *testing.T) {
	cmd, _, _ := testCommand()
	err := run(cmd, testState(t), "x", options{root: ".", modifiedSince: "not a date"})
	if err == nil {
		t.Fatal("expected an error for an unparseable date")
	}
}
