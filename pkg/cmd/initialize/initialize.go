package initialize

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xplore-cli/xplore/internal/config"
	"github.com/xplore-cli/xplore/internal/state"
)

func NewCmdInit(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "initialize",
		Aliases: []string{"init"},
		Short:   "Write the default configuration file.",
		Long:    "Creates the configuration file with the default keybindings and settings, leaving an existing one untouched.",
		Example: "xplore init",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.EnsureConfigExists(s.Home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration at %s\n", s.Config.GetConfigPath())

			start := s.Config.ResolvedStartPath()
			if s.Attrs.Supported(start) {
				fmt.Fprintf(cmd.OutOrStdout(), "notes supported under %s (limit %d bytes)\n",
					start, s.Attrs.Limit(start))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(),
					"warning: the filesystem at %s does not support notes\n", start)
			}
			return nil
		},
	}
}
