// Package browser is the interactive file browser with note editing,
// clipboard-style move/copy, and deep search.
package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/xplore-cli/xplore/internal/attr"
	"github.com/xplore-cli/xplore/internal/mover"
	"github.com/xplore-cli/xplore/internal/state"
)

type clipOp int

const (
	clipNone clipOp = iota
	clipCopy
	clipCut
)

type Model struct {
	state     *state.State
	keys      *keyMap
	help      help.Model
	watcher   *state.DirWatcher
	search    *searchView
	filter    textinput.Model
	noteEdit  textarea.Model
	folder    textinput.Model
	dir       string
	entries   []Entry
	visible   []Entry
	clip      []string
	marked    map[string]struct{}
	status    string
	cursor    int
	offset    int
	width     int
	height    int
	clipMode  clipOp
	filtering bool
	editing   bool
	creating  bool
	deleting  bool
	searching bool
}

func NewModel(s *state.State, startPath string) (*Model, error) {
	dir, err := filepath.Abs(startPath)
	if err != nil {
		return nil, fmt.Errorf("browser: resolving %s: %w", startPath, err)
	}

	fi := textinput.New()
	fi.Placeholder = "filter by name or note"
	fi.CharLimit = 200

	nf := textinput.New()
	nf.Placeholder = "folder name"
	nf.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "write a note for this entry"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false

	m := &Model{
		state:    s,
		keys:     newKeyMap(s.Config.Keybindings),
		help:     help.New(),
		search:   newSearchView(),
		filter:   fi,
		noteEdit: ta,
		folder:   nf,
		dir:      dir,
		marked:   make(map[string]struct{}),
	}
	if err := m.loadDir(dir); err != nil {
		return nil, err
	}

	if w, err := state.NewDirWatcher(dir); err == nil {
		m.watcher = w
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	if m.watcher != nil {
		return m.watcher.Start()
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.noteEdit.SetWidth(msg.Width - 8)
		m.noteEdit.SetHeight(msg.Height / 2)
		return m, nil

	case state.DirChangedMsg:
		if msg.Path == m.dir || filepath.Dir(msg.Path) == m.dir {
			m.refresh()
		}
		return m, m.watcher.Start()

	case state.DirWatcherErrMsg:
		m.status = errorStyle.Render(fmt.Sprintf("watcher: %v", msg.Err))
		return m, m.watcher.Start()

	case searchMatchMsg, searchDiagMsg, searchDoneMsg:
		return m, m.search.handleMsg(msg)

	case searchErrMsg:
		m.status = errorStyle.Render(msg.err.Error())
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.searching:
			return m.handleSearchKey(msg)
		case m.editing:
			return m.handleEditKey(msg)
		case m.creating:
			return m.handleNewFolderKey(msg)
		case m.deleting:
			return m.handleConfirmDeleteKey(msg)
		case m.filtering:
			return m.handleFilterKey(msg)
		default:
			return m.handleDefaultKey(msg)
		}
	}

	if m.searching {
		return m, m.search.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleDefaultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.search.stop()
		if m.watcher != nil {
			m.watcher.Close()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.enter):
		return m, m.open()

	case key.Matches(msg, m.keys.back):
		return m, m.navigate(filepath.Dir(m.dir))

	case key.Matches(msg, m.keys.edit):
		m.startNoteEdit()

	case key.Matches(msg, m.keys.filter):
		m.filtering = true
		m.filter.Focus()

	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.search.input.SetValue("")
		m.search.input.Focus()

	case key.Matches(msg, m.keys.selectMark):
		m.toggleMark()
		m.moveCursor(1)

	case key.Matches(msg, m.keys.selectAll):
		for _, e := range m.visible {
			if e.Name != ".." {
				m.marked[e.Path] = struct{}{}
			}
		}

	case key.Matches(msg, m.keys.clearMarks):
		m.marked = make(map[string]struct{})
		m.clip = nil
		m.clipMode = clipNone

	case key.Matches(msg, m.keys.copyMark):
		m.stageClip(clipCopy)

	case key.Matches(msg, m.keys.cutMark):
		m.stageClip(clipCut)

	case key.Matches(msg, m.keys.paste):
		m.paste()

	case key.Matches(msg, m.keys.newFolder):
		m.creating = true
		m.folder.SetValue("")
		m.folder.Focus()

	case key.Matches(msg, m.keys.delete):
		if _, ok := m.selected(); ok {
			m.deleting = true
		}

	case key.Matches(msg, m.keys.yankPath):
		m.yankPath()

	case key.Matches(msg, m.keys.yankNote):
		m.yankNote()

	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.SetValue("")
		m.filter.Blur()
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.editing = false
		m.noteEdit.Blur()
		return m, nil
	case msg.Type == tea.KeyCtrlS:
		m.editing = false
		m.noteEdit.Blur()
		m.saveNote()
		return m, nil
	}

	var cmd tea.Cmd
	m.noteEdit, cmd = m.noteEdit.Update(msg)
	return m, cmd
}

func (m *Model) handleNewFolderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.creating = false
		m.folder.Blur()
		return m, nil
	case tea.KeyEnter:
		m.creating = false
		m.folder.Blur()
		name := strings.TrimSpace(m.folder.Value())
		if name == "" {
			return m, nil
		}
		if err := os.Mkdir(filepath.Join(m.dir, name), 0o755); err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("mkdir: %v", err))
		} else {
			m.status = statusStyle.Render("created " + name)
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.folder, cmd = m.folder.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.deleting = false
	if msg.String() != "y" {
		m.status = statusStyle.Render("delete aborted")
		return m, nil
	}

	e, ok := m.selected()
	if !ok || e.Name == ".." {
		return m, nil
	}
	if err := os.RemoveAll(e.Path); err != nil {
		m.status = errorStyle.Render(fmt.Sprintf("delete: %v", err))
	} else {
		m.status = statusStyle.Render("deleted " + e.Name)
		delete(m.marked, e.Path)
		m.refresh()
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.stop()
		m.search.input.Blur()
		return m, nil
	case tea.KeyEnter:
		if m.search.input.Focused() {
			pattern := strings.TrimSpace(m.search.input.Value())
			if pattern == "" {
				return m, nil
			}
			m.search.input.Blur()
			return m, m.search.start(m.state.Engine, m.dir, pattern)
		}
		if match, ok := m.search.selected(); ok {
			m.searching = false
			m.search.stop()
			return m, m.navigateToMatch(match.Path)
		}
		return m, nil
	case tea.KeyUp:
		m.search.moveCursor(-1, m.height-8)
		return m, nil
	case tea.KeyDown:
		m.search.moveCursor(1, m.height-8)
		return m, nil
	}

	if m.search.input.Focused() {
		var cmd tea.Cmd
		m.search.input, cmd = m.search.input.Update(msg)
		return m, cmd
	}
	if msg.String() == "/" {
		m.search.input.Focus()
	}
	return m, nil
}

// open descends into the selected directory or hands a file to the
// default application.
func (m *Model) open() tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return nil
	}
	if e.IsDir {
		return m.navigate(e.Path)
	}
	if err := openWithDefaultApp(e.Path); err != nil {
		m.status = errorStyle.Render(fmt.Sprintf("open: %v", err))
	}
	return nil
}

func (m *Model) navigate(dir string) tea.Cmd {
	if err := m.loadDir(dir); err != nil {
		m.status = errorStyle.Render(err.Error())
		return nil
	}
	m.filter.SetValue("")
	m.applyFilter()
	if m.watcher != nil {
		if err := m.watcher.SetDir(dir); err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("watcher: %v", err))
		}
	}
	return nil
}

// navigateToMatch jumps to a search hit: enters its directory and parks
// the cursor on it.
func (m *Model) navigateToMatch(path string) tea.Cmd {
	cmd := m.navigate(filepath.Dir(path))
	for i, e := range m.visible {
		if e.Path == path {
			m.cursor = i
			break
		}
	}
	return cmd
}

func (m *Model) loadDir(dir string) error {
	entries, err := listDirectory(m.state.Attrs, dir)
	if err != nil {
		return err
	}
	m.dir = dir
	m.entries = entries
	m.visible = entries
	m.cursor = 0
	m.offset = 0
	return nil
}

func (m *Model) refresh() {
	prev := ""
	if e, ok := m.selected(); ok {
		prev = e.Path
	}

	entries, err := listDirectory(m.state.Attrs, m.dir)
	if err != nil {
		m.status = errorStyle.Render(err.Error())
		return
	}
	m.entries = entries
	m.applyFilter()

	for i, e := range m.visible {
		if e.Path == prev {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) applyFilter() {
	m.visible = filterEntries(m.entries, m.filter.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = 0
		m.offset = 0
	}
}

func (m *Model) selected() (Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Entry{}, false
	}
	return m.visible[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}

	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *Model) toggleMark() {
	e, ok := m.selected()
	if !ok || e.Name == ".." {
		return
	}
	if _, marked := m.marked[e.Path]; marked {
		delete(m.marked, e.Path)
	} else {
		m.marked[e.Path] = struct{}{}
	}
}

// stageClip records the marked paths, or the selected entry when nothing
// is marked, for a later paste.
func (m *Model) stageClip(op clipOp) {
	m.clip = m.clip[:0]
	if len(m.marked) > 0 {
		for path := range m.marked {
			m.clip = append(m.clip, path)
		}
	} else if e, ok := m.selected(); ok && e.Name != ".." {
		m.clip = append(m.clip, e.Path)
	}

	if len(m.clip) == 0 {
		return
	}
	m.clipMode = op
	verb := "cut"
	if op == clipCopy {
		verb = "copied"
	}
	m.status = statusStyle.Render(fmt.Sprintf("%s %d for paste", verb, len(m.clip)))
}

// paste replays the staged clip into the current directory through the
// mover, so notes travel with every entry.
func (m *Model) paste() {
	if m.clipMode == clipNone || len(m.clip) == 0 {
		m.status = statusStyle.Render("nothing to paste")
		return
	}

	var merged mover.Report
	for _, src := range m.clip {
		report, err := m.state.Mover.MoveOrCopy(mover.Request{
			Source: src,
			Dest:   m.dir,
			Copy:   m.clipMode == clipCopy,
		})
		if err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("paste %s: %v", filepath.Base(src), err))
			continue
		}
		merged.Outcomes = append(merged.Outcomes, report.Outcomes...)
	}

	if len(merged.Outcomes) > 0 {
		m.status = statusStyle.Render(merged.Summary())
	}
	if m.clipMode == clipCut {
		m.clip = nil
		m.clipMode = clipNone
	}
	m.marked = make(map[string]struct{})
	m.refresh()
}

func (m *Model) startNoteEdit() {
	e, ok := m.selected()
	if !ok || e.Name == ".." {
		return
	}
	m.editing = true
	m.noteEdit.SetValue(e.Note)
	m.noteEdit.Focus()
}

func (m *Model) saveNote() {
	e, ok := m.selected()
	if !ok {
		return
	}

	text := m.noteEdit.Value()
	var err error
	if strings.TrimSpace(text) == "" {
		err = m.state.Attrs.Remove(e.Path)
		if errors.Is(err, attr.ErrNotFound) {
			err = nil
		}
	} else {
		err = m.state.Attrs.Write(e.Path, text)
	}

	switch {
	case errors.Is(err, attr.ErrTooLarge):
		m.status = errorStyle.Render(
			fmt.Sprintf("note too large for this filesystem (limit %d bytes)", m.state.Attrs.Limit(e.Path)))
	case errors.Is(err, attr.ErrUnsupported):
		m.status = errorStyle.Render("notes are not supported on this filesystem")
	case err != nil:
		m.status = errorStyle.Render(fmt.Sprintf("note: %v", err))
	default:
		m.status = statusStyle.Render("note saved")
		m.refresh()
	}
}

func (m *Model) yankPath() {
	e, ok := m.selected()
	if !ok {
		return
	}
	if err := clipboard.WriteAll(e.Path); err != nil {
		m.status = errorStyle.Render(fmt.Sprintf("clipboard: %v", err))
		return
	}
	m.status = statusStyle.Render("path copied to clipboard")
}

func (m *Model) yankNote() {
	e, ok := m.selected()
	if !ok || !e.HasNote() {
		m.status = statusStyle.Render("no note to copy")
		return
	}
	if err := clipboard.WriteAll(e.Note); err != nil {
		m.status = errorStyle.Render(fmt.Sprintf("clipboard: %v", err))
		return
	}
	m.status = statusStyle.Render("note copied to clipboard")
}

func (m *Model) listHeight() int {
	h := m.height - 7
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) View() string {
	if m.width == 0 {
		return "loading"
	}

	if m.searching {
		header := titleStyle.Render("Deep Search ⦿ " + m.dir)
		body := m.search.view(m.width-4, m.height-2)
		return appStyle.Render(header + "\n\n" + body)
	}

	if m.editing {
		e, _ := m.selected()
		header := titleStyle.Render("Note ⦿ " + e.Name)
		hint := dimStyle.Render("ctrl+s save · esc cancel")
		return appStyle.Render(header + "\n\n" + m.noteEdit.View() + "\n\n" + hint)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.dir))
	b.WriteString("\n\n")

	rows := m.listHeight()
	end := m.offset + rows
	if end > len(m.visible) {
		end = len(m.visible)
	}
	listWidth := m.width * 3 / 5

	var lines []string
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i, listWidth))
	}
	list := lipgloss.NewStyle().Width(listWidth).Render(strings.Join(lines, "\n"))

	preview := ""
	if e, ok := m.selected(); ok && e.Name != ".." {
		preview = previewStyle.Render(renderNotePreview(e.Note, m.width-listWidth-6))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, preview))
	b.WriteString("\n")

	switch {
	case m.creating:
		b.WriteString(inputStyle.Render(m.folder.View()))
	case m.deleting:
		e, _ := m.selected()
		b.WriteString(errorStyle.Render(fmt.Sprintf("delete %s? (y/n)", e.Name)))
	case m.filtering || m.filter.Value() != "":
		b.WriteString(inputStyle.Render(m.filter.View()))
	default:
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return appStyle.Render(b.String())
}

func (m *Model) renderRow(i, width int) string {
	e := m.visible[i]

	marker := "  "
	if _, marked := m.marked[e.Path]; marked {
		marker = markedStyle.Render("● ")
	}

	name := e.Name
	if e.IsDir {
		name += string(filepath.Separator)
	}
	meta := ""
	if !e.IsDir && e.Name != ".." {
		meta = dimStyle.Render("  " + humanSize(e.Size))
	}
	noteFlag := ""
	if e.HasNote() {
		noteFlag = noteStyle.Render(" ✎")
	}

	if width < 1 {
		width = 1
	}
	line := marker + name + noteFlag + meta
	switch {
	case i == m.cursor:
		// Truncate before highlighting so the escape codes stay whole.
		line = selectedStyle.Render(truncate.StringWithTail(line, uint(width), "…"))
	case e.IsDir:
		line = truncate.StringWithTail(marker+dirStyle.Render(name)+noteFlag, uint(width), "…")
	default:
		line = truncate.StringWithTail(line, uint(width), "…")
	}
	return line
}

// Run starts the browser over the given directory and blocks until it
// exits.
func Run(s *state.State, startPath string) error {
	m, err := NewModel(s, startPath)
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
