package browser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/muesli/reflow/ansi"

	"github.com/xplore-cli/xplore/internal/search"
)

func TestRenderRowTruncatesStyledTextCleanly(t *testing.T) {
	m := &Model{
		marked: map[string]struct{}{},
		cursor: 1,
		visible: []Entry{
			{Name: strings.Repeat("ä", 120) + ".dir", IsDir: true},
			{Name: strings.Repeat("ß", 120) + ".txt", Size: 2048, Note: "styled"},
		},
	}

	for i := range m.visible {
		row := m.renderRow(i, 24)
		if !utf8.ValidString(row) {
			t.Fatalf("row %d contains a split rune: %q", i, row)
		}
		if w := ansi.PrintableRuneWidth(row); w > 24 {
			t.Fatalf("row %d renders %d cells wide, want at most 24", i, w)
		}
	}
}

func TestSearchViewTruncatesLongMatches(t *testing.T) {
	v := newSearchView()
	v.matches = []search.Match{{
		Path:    "/very/deep/" + strings.Repeat("é", 150),
		Kind:    search.MatchedNote,
		Excerpt: strings.Repeat("x", 200),
	}}

	out := v.view(30, 12)
	for _, line := range strings.Split(out, "\n") {
		if !utf8.ValidString(line) {
			t.Fatalf("line contains a split rune: %q", line)
		}
	}
}
