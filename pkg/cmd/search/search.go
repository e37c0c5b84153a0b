package search

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/xplore-cli/xplore/internal/fzf"
	"github.com/xplore-cli/xplore/internal/search"
	"github.com/xplore-cli/xplore/internal/state"
	cmdpkg "github.com/xplore-cli/xplore/pkg/cmd"
)

type options struct {
	root          string
	modifiedSince string
	namesOnly     bool
	notesOnly     bool
	caseSensitive bool
	pick          bool
}

func NewCmdSearch(s *state.State) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "search [pattern]",
		Aliases: []string{"s", "find"},
		Short:   "Search names and notes under a folder.",
		Long: heredoc.Doc(`
			Walks the tree under the root and matches the pattern against
			entry names and attached notes. Results stream out as they are
			found; unreadable folders are reported on stderr and skipped.
			Interrupting with Ctrl-C stops the walk and keeps what was
			already printed.

			Example:
			  xplore search invoice --root ~/documents
			  xplore search "tax 2025" --notes-only --modified-since "3 weeks ago"
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Help()
				return fmt.Errorf("pattern argument is required")
			}
			return run(cmd, s, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", ".", "folder to search under")
	cmd.Flags().BoolVar(&opts.namesOnly, "names-only", false, "match entry names only")
	cmd.Flags().BoolVar(&opts.notesOnly, "notes-only", false, "match attached notes only")
	cmd.Flags().BoolVarP(&opts.caseSensitive, "case-sensitive", "c", false, "match case exactly")
	cmd.Flags().StringVar(&opts.modifiedSince, "modified-since", "", "only report entries modified after this time")
	cmd.Flags().BoolVarP(&opts.pick, "pick", "p", false, "fuzzy-pick one result and print its path")

	return cmd
}

func run(cmd *cobra.Command, s *state.State, pattern string, opts options) error {
	if opts.namesOnly && opts.notesOnly {
		return fmt.Errorf("--names-only and --notes-only are mutually exclusive")
	}

	var since time.Time
	if opts.modifiedSince != "" {
		parsed, err := dateparse.ParseLocal(opts.modifiedSince)
		if err != nil {
			return fmt.Errorf("cannot parse --modified-since %q: %w", opts.modifiedSince, err)
		}
		since = parsed
	}

	root, err := cmdpkg.ResolveExistingTarget(opts.root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	session, err := s.Engine.Start(ctx, search.Query{
		Pattern:       pattern,
		MatchNames:    !opts.notesOnly,
		MatchNotes:    !opts.namesOnly,
		CaseSensitive: opts.caseSensitive,
		Root:          root,
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for diag := range session.Diags() {
			if search.IsCycle(diag.Err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "cycle: %s\n", diag.Path)
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s: %v\n", diag.Path, diag.Err)
		}
	}()

	var picked []search.Match
	count := 0
	for match := range session.Matches() {
		if !since.IsZero() && !modifiedAfter(match.Path, since) {
			continue
		}
		count++
		if opts.pick {
			picked = append(picked, match)
			continue
		}
		printMatch(cmd, match)
	}
	wg.Wait()

	if session.Wait() == search.StateCancelled {
		fmt.Fprintf(cmd.ErrOrStderr(), "search interrupted, %d results are partial\n", count)
		return nil
	}

	if opts.pick {
		picker := fzf.NewMatchPicker(s.Attrs, picked)
		picker.Header = fmt.Sprintf("%d matches for %q", len(picked), pattern)
		match, err := picker.Pick()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), match.Path)
	}
	return nil
}

func printMatch(cmd *cobra.Command, m search.Match) {
	if m.Excerpt != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s\t%s\n", m.Kind, m.Path, m.Excerpt)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s\n", m.Kind, m.Path)
}

func modifiedAfter(path string, since time.Time) bool {
	fi, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return fi.ModTime().After(since)
}
