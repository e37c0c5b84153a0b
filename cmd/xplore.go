package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xplore-cli/xplore/internal/constants"
	"github.com/xplore-cli/xplore/internal/state"
	"github.com/xplore-cli/xplore/pkg/cmd/root"
)

func Execute() {
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)
	viper.ReadInConfig()

	s, err := state.NewState()
	cobra.CheckErr(err)

	rootCmd, err := root.NewCmdRoot(s)
	cobra.CheckErr(err)
	rootCmd.Version = constants.Version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
