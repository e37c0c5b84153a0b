package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xplore-cli/xplore/internal/constants"
)

func GetConfigPath(homeDir string) string {
	return filepath.Join(
		homeDir,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

// EnsureConfigExists creates the config directory and writes a default
// config file when none is present yet.
func EnsureConfigExists(homeDir string) error {
	configPath := GetConfigPath(homeDir)
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return newDefaultConfig(homeDir).Save()
	} else if err != nil {
		return fmt.Errorf("failed to check config file existence: %w", err)
	}
	return nil
}
