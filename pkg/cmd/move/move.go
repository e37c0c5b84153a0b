package move

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/spf13/cobra"

	"github.com/xplore-cli/xplore/internal/mover"
	"github.com/xplore-cli/xplore/internal/state"
	cmdpkg "github.com/xplore-cli/xplore/pkg/cmd"
)

func NewCmdMove(s *state.State) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "mv [source] [dest]",
		Aliases: []string{"move"},
		Short:   "Move a file or folder, carrying its notes along.",
		Long: heredoc.Doc(`
			Works like mv(1), including across filesystems, but every moved
			entry keeps its attached note. Moving a folder moves the notes of
			everything inside it. Entries are transferred independently: a
			failure on one is reported and the rest still move.

			Example:
			  xplore mv ~/inbox/contract.pdf ~/archive/
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				_ = cmd.Help()
				return fmt.Errorf("source and destination arguments are required")
			}
			return Run(cmd, s, args[0], args[1], false, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite the destination without asking")

	return cmd
}

// Run resolves a transfer request, confirms an overwrite when one would
// happen, and prints the outcome. The copy and move commands share it.
func Run(cmd *cobra.Command, s *state.State, srcArg, destArg string, copyMode, force bool) error {
	source, err := cmdpkg.ResolveExistingTarget(srcArg)
	if err != nil {
		return err
	}
	dest, err := cmdpkg.ResolveTarget(destArg)
	if err != nil {
		return err
	}

	if !force {
		ok, err := confirmOverwrite(source, dest)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
	}

	report, err := s.Mover.MoveOrCopy(mover.Request{
		Source: source,
		Dest:   dest,
		Copy:   copyMode,
	})
	if err != nil {
		return err
	}

	for _, o := range report.Outcomes {
		switch {
		case o.DataMoved && !o.NotePreserved:
			// The entry itself arrived; only its note did not.
			fmt.Fprintf(cmd.ErrOrStderr(), "note lost: %s: %v\n", o.Dest, o.Reason)
		case o.Reason != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", o.Source, o.Reason)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary())

	if moved, total := report.Moved(); moved < total {
		return fmt.Errorf("%d of %d entries failed", total-moved, total)
	}
	return nil
}

// confirmOverwrite prompts before clobbering an existing destination file.
// Non-interactive runs proceed without asking, matching mv(1).
func confirmOverwrite(source, dest string) (bool, error) {
	final := dest
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		final = filepath.Join(dest, filepath.Base(source))
	}

	fi, err := os.Lstat(final)
	if err != nil || fi.IsDir() {
		return true, nil
	}
	if !cmdpkg.InteractiveTerminal() {
		return true, nil
	}

	prompt := confirmation.New(
		fmt.Sprintf("Overwrite %s?", final),
		confirmation.No,
	)
	return prompt.RunPrompt()
}
