package note

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/xplore-cli/xplore/internal/attr"
	"github.com/xplore-cli/xplore/internal/state"
	cmdpkg "github.com/xplore-cli/xplore/pkg/cmd"
)

func NewCmdNote(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"n"},
		Short:   "Read, write, and remove notes attached to files and folders.",
		Long: heredoc.Doc(`
			Notes live in the entry's extended attributes, so they follow the
			entry around without any sidecar files or databases. Attaching,
			reading, and removing all address the entry by path.

			Example:
			  xplore note set report.pdf "final version, sent to legal"
			  xplore note show report.pdf
			  xplore note rm report.pdf
		`),
	}

	cmd.AddCommand(
		newCmdShow(s),
		newCmdSet(s),
		newCmdEdit(s),
		newCmdRm(s),
	)

	return cmd
}

func newCmdShow(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Print the note attached to a path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Help()
				return fmt.Errorf("path argument is required")
			}
			path, err := cmdpkg.ResolveExistingTarget(args[0])
			if err != nil {
				return err
			}

			note, err := s.Attrs.Read(path)
			if errors.Is(err, attr.ErrNotFound) {
				return fmt.Errorf("no note attached to %s", args[0])
			}
			if err != nil {
				return describeAttrErr(err, path, s)
			}

			fmt.Fprintln(cmd.OutOrStdout(), note.Text)
			return nil
		},
	}
}

func newCmdSet(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "set [path] [text]",
		Short: "Attach a note to a path, replacing any existing one.",
		Long: heredoc.Doc(`
			With a text argument the note is written verbatim. Without one the
			note body is read from standard input, so notes can be piped in:

			  git log -1 --format=%s | xplore note set release.tar.gz
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Help()
				return fmt.Errorf("path argument is required")
			}
			path, err := cmdpkg.ResolveExistingTarget(args[0])
			if err != nil {
				return err
			}

			var text string
			if len(args) > 1 {
				text = strings.Join(args[1:], " ")
			} else {
				body, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading note from stdin: %w", err)
				}
				text = strings.TrimRight(string(body), "\n")
			}
			if text == "" {
				return fmt.Errorf("refusing to write an empty note, use 'note rm' to remove one")
			}

			if err := s.Attrs.Write(path, text); err != nil {
				return describeAttrErr(err, path, s)
			}
			return nil
		},
	}
}

func newCmdEdit(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [path]",
		Short: "Open a path's note in your editor.",
		Long: heredoc.Doc(`
			The note is loaded into a temporary file, handed to the configured
			editor, and written back when the editor exits. Emptying the file
			removes the note.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Help()
				return fmt.Errorf("path argument is required")
			}
			path, err := cmdpkg.ResolveExistingTarget(args[0])
			if err != nil {
				return err
			}

			current := ""
			if note, err := s.Attrs.Read(path); err == nil {
				current = note.Text
			} else if !errors.Is(err, attr.ErrNotFound) {
				return describeAttrErr(err, path, s)
			}

			edited, err := editInTempFile(editorCommand(s), filepath.Base(path), current)
			if err != nil {
				return err
			}

			edited = strings.TrimRight(edited, "\n")
			switch {
			case edited == current:
				return nil
			case edited == "":
				err = s.Attrs.Remove(path)
				if errors.Is(err, attr.ErrNotFound) {
					return nil
				}
			default:
				err = s.Attrs.Write(path, edited)
			}
			if err != nil {
				return describeAttrErr(err, path, s)
			}
			return nil
		},
	}
}

func newCmdRm(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [path]",
		Aliases: []string{"remove"},
		Short:   "Remove the note attached to a path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Help()
				return fmt.Errorf("path argument is required")
			}
			path, err := cmdpkg.ResolveExistingTarget(args[0])
			if err != nil {
				return err
			}

			err = s.Attrs.Remove(path)
			if errors.Is(err, attr.ErrNotFound) {
				return fmt.Errorf("no note attached to %s", args[0])
			}
			if err != nil {
				return describeAttrErr(err, path, s)
			}
			return nil
		},
	}
}

func editorCommand(s *state.State) string {
	if s.Config.Editor != "" {
		return s.Config.Editor
	}
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}

func editInTempFile(editor, base, content string) (string, error) {
	f, err := os.CreateTemp("", "xplore-note-"+base+"-*.md")
	if err != nil {
		return "", fmt.Errorf("creating scratch file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("writing scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	run := exec.Command(editor, tmp)
	run.Stdin = os.Stdin
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	if err := run.Run(); err != nil {
		return "", fmt.Errorf("editor %s: %w", editor, err)
	}

	body, err := os.ReadFile(tmp)
	if err != nil {
		return "", fmt.Errorf("reading scratch file back: %w", err)
	}
	return string(body), nil
}

// describeAttrErr translates the attribute error taxonomy into messages
// that name the path and, for size failures, the effective limit.
func describeAttrErr(err error, path string, s *state.State) error {
	switch {
	case errors.Is(err, attr.ErrUnsupported):
		return fmt.Errorf("%s: the filesystem holding this path does not support notes", path)
	case errors.Is(err, attr.ErrTooLarge):
		return fmt.Errorf("%s: note exceeds this filesystem's limit of %d bytes", path, s.Attrs.Limit(path))
	case errors.Is(err, attr.ErrPermission):
		return fmt.Errorf("%s: permission denied", path)
	default:
		return err
	}
}
