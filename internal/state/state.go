package state

import (
	"fmt"
	"os"

	"github.com/xplore-cli/xplore/internal/attr"
	"github.com/xplore-cli/xplore/internal/config"
	"github.com/xplore-cli/xplore/internal/mover"
	"github.com/xplore-cli/xplore/internal/search"
)

// State wires the configuration and the core subsystems together for the
// commands and the browser.
type State struct {
	Config *config.Config
	Attrs  *attr.Store
	Mover  *mover.Mover
	Engine *search.Engine
	Home   string
}

func NewState() (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}

	attrs := attr.NewStore(cfg.NoteLimit)
	return &State{
		Config: cfg,
		Attrs:  attrs,
		Mover:  mover.New(attrs),
		Engine: search.NewEngine(attrs),
		Home:   home,
	}, nil
}

// Rebuild re-derives the subsystems from the current configuration, for
// when flags mutate it after construction.
func (s *State) Rebuild() {
	s.Attrs = attr.NewStore(s.Config.NoteLimit)
	s.Mover = mover.New(s.Attrs)
	s.Engine = search.NewEngine(s.Attrs)
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("state: user home directory not available: %w", err)
	}
	return home, nil
}
