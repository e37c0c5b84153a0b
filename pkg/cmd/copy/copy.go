package copy

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/xplore-cli/xplore/internal/state"
	"github.com/xplore-cli/xplore/pkg/cmd/move"
)

func NewCmdCopy(s *state.State) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "cp [source] [dest]",
		Aliases: []string{"copy"},
		Short:   "Copy a file or folder, duplicating its notes.",
		Long: heredoc.Doc(`
			Works like cp -r, but every copied entry gets a copy of the
			source's note as well. The source and its notes are left
			untouched.

			Example:
			  xplore cp ~/projects/design.sketch ~/backups/
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				_ = cmd.Help()
				return fmt.Errorf("source and destination arguments are required")
			}
			return move.Run(cmd, s, args[0], args[1], true, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite the destination without asking")

	return cmd
}
