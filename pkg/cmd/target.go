package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/xplore-cli/xplore/internal/pathutil"
)

// ResolveTarget turns a command-line path argument into an absolute path,
// expanding a leading tilde. The path does not have to exist; callers that
// need an existing target check themselves.
func ResolveTarget(arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("a path argument is required")
	}

	resolved, err := pathutil.Abs(pathutil.ExpandHome(arg))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", arg, err)
	}
	return filepath.Clean(resolved), nil
}

// ResolveExistingTarget is ResolveTarget plus an existence check, for
// commands that read rather than create.
func ResolveExistingTarget(arg string) (string, error) {
	resolved, err := ResolveTarget(arg)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(resolved); err != nil {
		return "", fmt.Errorf("path %q: %w", arg, err)
	}
	return resolved, nil
}

// InteractiveTerminal reports whether stdout is a terminal, which gates
// prompts and the TUI surfaces.
func InteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
