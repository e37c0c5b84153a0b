package root

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xplore-cli/xplore/internal/state"
	"github.com/xplore-cli/xplore/pkg/cmd/browse"
	cp "github.com/xplore-cli/xplore/pkg/cmd/copy"
	"github.com/xplore-cli/xplore/pkg/cmd/initialize"
	"github.com/xplore-cli/xplore/pkg/cmd/move"
	"github.com/xplore-cli/xplore/pkg/cmd/note"
	"github.com/xplore-cli/xplore/pkg/cmd/search"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "xplore",
		Aliases: []string{"xp"},
		Short:   "Browse files with notes that live in the filesystem itself.",
		Long: `Attach notes to files and folders, search them, and move things
around without losing them. Notes are stored in each entry's extended
attributes, so there is nothing to sync and nothing to corrupt.

  xplore note set thesis.pdf "draft 3, waiting on review"
  xplore search "waiting on" --notes-only
`,
		// Launching the browser is the default action.
		RunE: browse.NewCmdBrowse(s).RunE,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// The bound key resolves flag over config file over default.
			if limit := viper.GetInt("note_limit"); limit >= 0 && limit != s.Config.NoteLimit {
				s.Config.NoteLimit = limit
				s.Rebuild()
			}
		},
	}

	cmd.PersistentFlags().
		IntVar(
			&s.Config.NoteLimit,
			"note-limit",
			s.Config.NoteLimit,
			"Cap note size below the filesystem's own limit (bytes).",
		)
	viper.BindPFlag("note_limit", cmd.PersistentFlags().Lookup("note-limit"))

	cmd.AddCommand(
		initialize.NewCmdInit(s),
		browse.NewCmdBrowse(s),
		note.NewCmdNote(s),
		move.NewCmdMove(s),
		cp.NewCmdCopy(s),
		search.NewCmdSearch(s),
	)

	return cmd, nil
}
