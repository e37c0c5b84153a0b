// Package search walks a directory tree and streams entries whose name or
// attached note matches a query, without ever materializing the full result
// set.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xplore-cli/xplore/internal/attr"
)

// ErrBadRoot is the only fatal way to start a search: the starting path is
// missing or not a directory. Everything after a successful start is
// reported through the diagnostics channel instead.
var ErrBadRoot = errors.New("search: start path is not a directory")

// matchBuffer bounds the handoff between traversal and consumer.
const matchBuffer = 64

// diagBuffer bounds the diagnostics side-channel.
const diagBuffer = 16

// Engine produces cancellable streaming searches. It holds no per-search
// state; every Start returns an independent session.
type Engine struct {
	attrs *attr.Store
}

func NewEngine(attrs *attr.Store) *Engine {
	return &Engine{attrs: attrs}
}

// Start validates the query root and launches the traversal on its own
// goroutine. The returned session's channels are live immediately; the
// first match is available as soon as it is found.
func (e *Engine) Start(ctx context.Context, q Query) (*Session, error) {
	root := filepath.Clean(q.Root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadRoot, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrBadRoot, root)
	}
	if !q.MatchNames && !q.MatchNotes {
		q.MatchNames = true
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		query:   q,
		matches: make(chan Match, matchBuffer),
		diags:   make(chan Diag, diagBuffer),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer cancel()
		w := &walker{
			engine:  e,
			session: s,
			eval:    newEvaluator(q),
			visited: make(map[string]bool),
		}
		if id, ok := dirIdentity(root, info); ok {
			w.visited[id] = true
		}
		w.walk(ctx, root)
		s.finish(ctx.Err() != nil)
	}()

	return s, nil
}

type walker struct {
	engine  *Engine
	session *Session
	eval    evaluator
	// visited holds the canonical identities of every directory entered in
	// this traversal, so symlink cycles are skipped instead of followed.
	visited map[string]bool
}

// walk visits one directory: its entries are evaluated as a unit, then its
// subdirectories are descended into. Cancellation is checked at every
// directory boundary.
func (w *walker) walk(ctx context.Context, dir string) {
	if ctx.Err() != nil {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.diagnose(ctx, dir, err)
		return
	}

	var pending []string

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		path := filepath.Join(dir, entry.Name())
		w.evaluate(ctx, path, entry.Name())

		if entry.IsDir() {
			pending = append(pending, path)
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			// Follow directory symlinks; cycle detection below keeps
			// ancestor links from recursing forever.
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				pending = append(pending, path)
			}
		}
	}

	for _, sub := range pending {
		if ctx.Err() != nil {
			return
		}
		info, err := os.Stat(sub)
		if err != nil {
			w.diagnose(ctx, sub, err)
			continue
		}
		if id, ok := dirIdentity(sub, info); ok {
			if w.visited[id] {
				w.diagnose(ctx, sub, errCycle)
				continue
			}
			w.visited[id] = true
		}
		w.walk(ctx, sub)
	}
}

var errCycle = errors.New("search: symlink cycle")

// IsCycle reports whether a diagnostic marks a skipped symlink cycle.
func IsCycle(err error) bool {
	return errors.Is(err, errCycle)
}

func (w *walker) evaluate(ctx context.Context, path, name string) {
	q := w.session.query

	var kind MatchKind
	var excerpt string

	if q.MatchNames && w.eval.matches(name) {
		kind = MatchedName
	}
	if q.MatchNotes {
		// The attribute read happens only when note matching was asked
		// for; a missing or unreadable note is simply no match.
		if note, err := w.engine.attrs.Read(path); err == nil && w.eval.matches(note.Text) {
			if kind == MatchedName {
				kind = MatchedBoth
			} else {
				kind = MatchedNote
			}
			excerpt = w.eval.excerpt(note.Text)
		}
	}
	if kind == 0 {
		return
	}

	select {
	case w.session.matches <- Match{Path: path, Kind: kind, Excerpt: excerpt}:
	case <-ctx.Done():
	}
}

func (w *walker) diagnose(ctx context.Context, path string, err error) {
	select {
	case w.session.diags <- Diag{Path: path, Err: err}:
	case <-ctx.Done():
	}
}
