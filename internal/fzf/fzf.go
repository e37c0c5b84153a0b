// Package fzf wraps interactive fuzzy picking over deep-search results.
package fzf

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/muesli/termenv"

	"github.com/xplore-cli/xplore/internal/attr"
	"github.com/xplore-cli/xplore/internal/search"
)

// ErrNoSelection is returned when the user aborts the picker.
var ErrNoSelection = errors.New("fzf: no match selected")

// MatchPicker narrows a finished result set down to one path. The preview
// pane shows the attached note, rendered as markdown.
type MatchPicker struct {
	attrs   *attr.Store
	matches []search.Match
	Header  string
}

func NewMatchPicker(attrs *attr.Store, matches []search.Match) *MatchPicker {
	return &MatchPicker{attrs: attrs, matches: matches}
}

// Pick runs the finder and returns the chosen match.
func (p *MatchPicker) Pick() (search.Match, error) {
	if len(p.matches) == 0 {
		return search.Match{}, ErrNoSelection
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(p.renderNotePreview),
	}
	if p.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(p.Header))
	}

	idx, err := fuzzyfinder.Find(p.matches, func(i int) string {
		m := p.matches[i]
		if m.Excerpt != "" {
			return fmt.Sprintf("%s [%s] %s", m.Path, m.Kind, m.Excerpt)
		}
		return fmt.Sprintf("%s [%s]", m.Path, m.Kind)
	}, options...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return search.Match{}, ErrNoSelection
		}
		return search.Match{}, fmt.Errorf("fzf: %w", err)
	}

	return p.matches[idx], nil
}

func (p *MatchPicker) renderNotePreview(i, w, h int) string {
	if i == -1 {
		return ""
	}

	note, err := p.attrs.Read(p.matches[i].Path)
	if err != nil {
		return "no note"
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(w),
		glamour.WithColorProfile(termenv.ANSI256),
	)

	rendered, err := r.Render(note.Text)
	if err != nil {
		return note.Text
	}
	return rendered
}
