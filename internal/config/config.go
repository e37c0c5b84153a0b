package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xplore-cli/xplore/internal/pathutil"
)

// Keybindings is the remapping table for the browser. Key names follow
// bubbletea's notation ("ctrl+c", "shift+delete", "f1", ...).
type Keybindings struct {
	Quit       string `yaml:"quit"        json:"quit"`
	Edit       string `yaml:"edit"        json:"edit"`
	Up         string `yaml:"up"          json:"up"`
	Down       string `yaml:"down"        json:"down"`
	Enter      string `yaml:"enter"       json:"enter"`
	Back       string `yaml:"back"        json:"back"`
	Filter     string `yaml:"filter"      json:"filter"`
	Search     string `yaml:"search"      json:"search"`
	Select     string `yaml:"select"      json:"select"`
	Copy       string `yaml:"copy"        json:"copy"`
	Cut        string `yaml:"cut"         json:"cut"`
	Paste      string `yaml:"paste"       json:"paste"`
	NewFolder  string `yaml:"new_folder"  json:"new_folder"`
	Delete     string `yaml:"delete"      json:"delete"`
	Help       string `yaml:"help"        json:"help"`
	YankPath   string `yaml:"yank_path"   json:"yank_path"`
	YankNote   string `yaml:"yank_note"   json:"yank_note"`
	SelectAll  string `yaml:"select_all"  json:"select_all"`
	ClearMarks string `yaml:"clear_marks" json:"clear_marks"`
}

// Config is the on-disk configuration. The core packages consume StartPath
// and NoteLimit as immutable per-call inputs; they never read the file
// themselves.
type Config struct {
	StartPath   string      `yaml:"start_path"  json:"start_path"`
	NoteLimit   int         `yaml:"note_limit"  json:"note_limit"`
	Editor      string      `yaml:"editor"      json:"editor"`
	Keybindings Keybindings `yaml:"keybindings" json:"keybindings"`

	home string `yaml:"-" json:"-"`
}

func defaultKeybindings() Keybindings {
	return Keybindings{
		Quit:       "q",
		Edit:       "e",
		Up:         "k",
		Down:       "j",
		Enter:      "enter",
		Back:       "backspace",
		Filter:     "/",
		Search:     "f3",
		Select:     " ",
		Copy:       "c",
		Cut:        "x",
		Paste:      "p",
		NewFolder:  "n",
		Delete:     "shift+delete",
		Help:       "f1",
		YankPath:   "y",
		YankNote:   "Y",
		SelectAll:  "ctrl+a",
		ClearMarks: "ctrl+d",
	}
}

func newDefaultConfig(home string) *Config {
	return &Config{
		StartPath:   "",
		NoteLimit:   0,
		Editor:      "",
		Keybindings: defaultKeybindings(),
		home:        home,
	}
}

// ensureDefaults fills any keybinding the user left blank so a sparse
// config file still produces a fully mapped browser.
func (cfg *Config) ensureDefaults() {
	defaults := defaultKeybindings()
	fill := func(field *string, def string) {
		if strings.TrimSpace(*field) == "" {
			*field = def
		}
	}
	fill(&cfg.Keybindings.Quit, defaults.Quit)
	fill(&cfg.Keybindings.Edit, defaults.Edit)
	fill(&cfg.Keybindings.Up, defaults.Up)
	fill(&cfg.Keybindings.Down, defaults.Down)
	fill(&cfg.Keybindings.Enter, defaults.Enter)
	fill(&cfg.Keybindings.Back, defaults.Back)
	fill(&cfg.Keybindings.Filter, defaults.Filter)
	fill(&cfg.Keybindings.Search, defaults.Search)
	fill(&cfg.Keybindings.Select, defaults.Select)
	fill(&cfg.Keybindings.Copy, defaults.Copy)
	fill(&cfg.Keybindings.Cut, defaults.Cut)
	fill(&cfg.Keybindings.Paste, defaults.Paste)
	fill(&cfg.Keybindings.NewFolder, defaults.NewFolder)
	fill(&cfg.Keybindings.Delete, defaults.Delete)
	fill(&cfg.Keybindings.Help, defaults.Help)
	fill(&cfg.Keybindings.YankPath, defaults.YankPath)
	fill(&cfg.Keybindings.YankNote, defaults.YankNote)
	fill(&cfg.Keybindings.SelectAll, defaults.SelectAll)
	fill(&cfg.Keybindings.ClearMarks, defaults.ClearMarks)
}

// Load reads the config file under home, tolerating an empty or missing
// file by falling back to defaults.
func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newDefaultConfig(home), nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := newDefaultConfig(home)
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	cfg.home = home
	cfg.ensureDefaults()
	if cfg.NoteLimit < 0 {
		return nil, fmt.Errorf("config: note_limit must not be negative, got %d", cfg.NoteLimit)
	}
	return cfg, nil
}

// Save writes the config back to its file, creating the directory if
// needed.
func (cfg *Config) Save() error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	path := cfg.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (cfg *Config) GetConfigPath() string {
	return GetConfigPath(cfg.home)
}

// ResolvedStartPath returns the configured search/browse starting point, or
// the filesystem root when none is configured.
func (cfg *Config) ResolvedStartPath() string {
	if strings.TrimSpace(cfg.StartPath) == "" {
		return string(filepath.Separator)
	}
	return pathutil.ExpandHome(cfg.StartPath)
}
