package browse

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/xplore-cli/xplore/internal/state"
	"github.com/xplore-cli/xplore/internal/tui/browser"
	cmdpkg "github.com/xplore-cli/xplore/pkg/cmd"
)

func NewCmdBrowse(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "browse [path]",
		Aliases: []string{"b", "ui"},
		Short:   "Open the interactive browser.",
		Long: heredoc.Doc(`
			Full-screen browsing with note editing, marks, cut/copy/paste that
			carries notes along, and deep search. Starts in the configured
			start path unless one is given.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmdpkg.InteractiveTerminal() {
				return fmt.Errorf("the browser needs an interactive terminal")
			}

			start := s.Config.ResolvedStartPath()
			if len(args) > 0 {
				resolved, err := cmdpkg.ResolveExistingTarget(args[0])
				if err != nil {
					return err
				}
				start = resolved
			}

			return browser.Run(s, start)
		},
	}
}
