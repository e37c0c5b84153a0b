package state

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// DirChangedMsg tells the browser the directory it is showing changed on
// disk and should be re-listed.
type DirChangedMsg struct {
	Path string
}

// DirWatcherErrMsg surfaces watcher failures to the UI loop.
type DirWatcherErrMsg struct {
	Err error
}

// DirWatcher follows a single directory (the one the browser is showing)
// and feeds change notifications into the bubbletea loop.
type DirWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	dir     string
}

func NewDirWatcher(dir string) (*DirWatcher, error) {
	if dir == "" {
		return nil, errors.New("state: watch directory cannot be empty")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	return &DirWatcher{watcher: w, done: make(chan struct{}), dir: dir}, nil
}

// SetDir moves the watch to a new directory when the browser navigates.
func (w *DirWatcher) SetDir(dir string) error {
	if w == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if dir == w.dir {
		return nil
	}

	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	_ = w.watcher.Remove(w.dir)
	w.dir = dir
	return nil
}

// Start returns a command that blocks until the next relevant event. The
// browser re-issues it after handling each message.
func (w *DirWatcher) Start() tea.Cmd {
	if w == nil {
		return nil
	}

	return func() tea.Msg {
		for {
			select {
			case <-w.done:
				return nil
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				return DirChangedMsg{Path: event.Name}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					return DirWatcherErrMsg{Err: err}
				}
			}
		}
	}
}

func (w *DirWatcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()
	})
	return closeErr
}
