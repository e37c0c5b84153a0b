package browser

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/xplore-cli/xplore/internal/config"
)

type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	edit       key.Binding
	filter     key.Binding
	search     key.Binding
	selectMark key.Binding
	copyMark   key.Binding
	cutMark    key.Binding
	paste      key.Binding
	newFolder  key.Binding
	delete     key.Binding
	yankPath   key.Binding
	yankNote   key.Binding
	selectAll  key.Binding
	clearMarks key.Binding
	help       key.Binding
	quit       key.Binding
}

// newKeyMap builds the browser keymap from the user's remapping table.
// Arrow keys stay usable next to whatever the user mapped for up/down.
func newKeyMap(kb config.Keybindings) *keyMap {
	return &keyMap{
		up: key.NewBinding(
			key.WithKeys(kb.Up, "up"),
			key.WithHelp(kb.Up, "up"),
		),
		down: key.NewBinding(
			key.WithKeys(kb.Down, "down"),
			key.WithHelp(kb.Down, "down"),
		),
		enter: key.NewBinding(
			key.WithKeys(kb.Enter),
			key.WithHelp("↵", "open"),
		),
		back: key.NewBinding(
			key.WithKeys(kb.Back),
			key.WithHelp(kb.Back, "parent dir"),
		),
		edit: key.NewBinding(
			key.WithKeys(kb.Edit),
			key.WithHelp(kb.Edit, "edit note"),
		),
		filter: key.NewBinding(
			key.WithKeys(kb.Filter),
			key.WithHelp(kb.Filter, "filter"),
		),
		search: key.NewBinding(
			key.WithKeys(kb.Search),
			key.WithHelp(kb.Search, "deep search"),
		),
		selectMark: key.NewBinding(
			key.WithKeys(kb.Select),
			key.WithHelp("space", "mark"),
		),
		copyMark: key.NewBinding(
			key.WithKeys(kb.Copy),
			key.WithHelp(kb.Copy, "copy marked"),
		),
		cutMark: key.NewBinding(
			key.WithKeys(kb.Cut),
			key.WithHelp(kb.Cut, "cut marked"),
		),
		paste: key.NewBinding(
			key.WithKeys(kb.Paste),
			key.WithHelp(kb.Paste, "paste here"),
		),
		newFolder: key.NewBinding(
			key.WithKeys(kb.NewFolder),
			key.WithHelp(kb.NewFolder, "new folder"),
		),
		delete: key.NewBinding(
			key.WithKeys(kb.Delete),
			key.WithHelp(kb.Delete, "delete"),
		),
		yankPath: key.NewBinding(
			key.WithKeys(kb.YankPath),
			key.WithHelp(kb.YankPath, "yank path"),
		),
		yankNote: key.NewBinding(
			key.WithKeys(kb.YankNote),
			key.WithHelp(kb.YankNote, "yank note"),
		),
		selectAll: key.NewBinding(
			key.WithKeys(kb.SelectAll),
			key.WithHelp(kb.SelectAll, "mark all"),
		),
		clearMarks: key.NewBinding(
			key.WithKeys(kb.ClearMarks),
			key.WithHelp(kb.ClearMarks, "clear marks"),
		),
		help: key.NewBinding(
			key.WithKeys(kb.Help),
			key.WithHelp(kb.Help, "help"),
		),
		quit: key.NewBinding(
			key.WithKeys(kb.Quit, "ctrl+c"),
			key.WithHelp(kb.Quit, "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.edit, k.filter, k.search, k.help, k.quit}
}

// FullHelp implements help.KeyMap.
func (k *keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.edit, k.filter, k.search, k.yankPath, k.yankNote},
		{k.selectMark, k.selectAll, k.clearMarks, k.copyMark, k.cutMark, k.paste},
		{k.newFolder, k.delete, k.help, k.quit},
	}
}
