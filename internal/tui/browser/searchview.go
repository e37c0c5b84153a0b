package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/xplore-cli/xplore/internal/search"
)

type searchMatchMsg struct {
	match search.Match
}

type searchDiagMsg struct {
	diag search.Diag
}

type searchDoneMsg struct {
	final search.State
}

type searchErrMsg struct {
	err error
}

// searchView is the deep-search overlay: a query input plus the live
// result list streamed from the engine.
type searchView struct {
	input   textinput.Model
	spin    spinner.Model
	session *search.Session
	matches []search.Match
	skipped int
	cycles  int
	cursor  int
	offset  int
	final   search.State
	running bool
}

func newSearchView() *searchView {
	ti := textinput.New()
	ti.Placeholder = "search names and notes"
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &searchView{input: ti, spin: sp}
}

// start cancels any prior session and launches a new one; only one search
// runs at a time.
func (v *searchView) start(engine *search.Engine, root, pattern string) tea.Cmd {
	v.stop()
	v.matches = nil
	v.skipped = 0
	v.cycles = 0
	v.cursor = 0
	v.offset = 0
	v.final = search.StateRunning

	session, err := engine.Start(context.Background(), search.Query{
		Pattern:    pattern,
		MatchNames: true,
		MatchNotes: true,
		Root:       root,
	})
	if err != nil {
		return func() tea.Msg { return searchErrMsg{err: err} }
	}

	v.session = session
	v.running = true
	return tea.Batch(awaitMatch(session), awaitDiag(session), v.spin.Tick)
}

// stop cancels the active session, if any.
func (v *searchView) stop() {
	if v.session != nil {
		v.session.Cancel()
	}
	v.running = false
}

func awaitMatch(s *search.Session) tea.Cmd {
	return func() tea.Msg {
		m, ok := <-s.Matches()
		if !ok {
			return searchDoneMsg{final: s.Wait()}
		}
		return searchMatchMsg{match: m}
	}
}

func awaitDiag(s *search.Session) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-s.Diags()
		if !ok {
			return nil
		}
		return searchDiagMsg{diag: d}
	}
}

func (v *searchView) handleMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchMatchMsg:
		v.matches = append(v.matches, msg.match)
		if v.session != nil {
			return awaitMatch(v.session)
		}
	case searchDiagMsg:
		if search.IsCycle(msg.diag.Err) {
			v.cycles++
		} else {
			v.skipped++
		}
		if v.session != nil {
			return awaitDiag(v.session)
		}
	case searchDoneMsg:
		v.running = false
		v.final = msg.final
	case spinner.TickMsg:
		if v.running {
			var cmd tea.Cmd
			v.spin, cmd = v.spin.Update(msg)
			return cmd
		}
	}
	return nil
}

func (v *searchView) moveCursor(delta, height int) {
	if len(v.matches) == 0 {
		v.cursor = 0
		return
	}
	v.cursor += delta
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.cursor >= len(v.matches) {
		v.cursor = len(v.matches) - 1
	}
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+height {
		v.offset = v.cursor - height + 1
	}
}

func (v *searchView) selected() (search.Match, bool) {
	if v.cursor < 0 || v.cursor >= len(v.matches) {
		return search.Match{}, false
	}
	return v.matches[v.cursor], true
}

func (v *searchView) statusLine() string {
	var b strings.Builder
	switch {
	case v.running:
		fmt.Fprintf(&b, "%s searching… %d matches", v.spin.View(), len(v.matches))
	case v.final == search.StateCancelled:
		fmt.Fprintf(&b, "cancelled, %d matches (partial)", len(v.matches))
	default:
		fmt.Fprintf(&b, "done, %d matches", len(v.matches))
	}
	if v.skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", v.skipped)
	}
	if v.cycles > 0 {
		fmt.Fprintf(&b, ", %d cycles", v.cycles)
	}
	return b.String()
}

func (v *searchView) view(width, height int) string {
	if width < 1 {
		width = 1
	}
	var b strings.Builder
	b.WriteString(inputStyle.Render(v.input.View()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(v.statusLine()))
	b.WriteString("\n\n")

	rows := height - 5
	if rows < 1 {
		rows = 1
	}
	end := v.offset + rows
	if end > len(v.matches) {
		end = len(v.matches)
	}

	for i := v.offset; i < end; i++ {
		m := v.matches[i]
		line := fmt.Sprintf("%-9s %s", "["+m.Kind.String()+"]", m.Path)
		if m.Excerpt != "" {
			line += noteStyle.Render("  › " + m.Excerpt)
		}
		line = truncate.StringWithTail(line, uint(width), "…")
		if i == v.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
