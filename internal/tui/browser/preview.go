package browser

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// renderNotePreview renders a note for the preview pane. Notes are plain
// text but most users write them as markdown, so they get the styled
// treatment; rendering failures fall back to the raw text.
func renderNotePreview(text string, width int) string {
	if text == "" {
		return dimStyle.Render("no note")
	}

	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return text
	}

	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	return rendered
}
