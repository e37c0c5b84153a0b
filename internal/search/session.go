package search

import (
	"context"
	"sync/atomic"
)

// State is the lifecycle of one search session. Cancelled is terminal and
// distinct from Completed so partial result sets can be labeled as partial.
type State int32

const (
	StateRunning State = iota
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Session is the handle for one in-flight search: a stream of matches, a
// diagnostics side-channel for skipped subtrees, and a cooperative cancel.
// Both channels close when the traversal ends; consumers drain both.
type Session struct {
	query   Query
	matches chan Match
	diags   chan Diag
	cancel  context.CancelFunc
	done    chan struct{}
	state   atomic.Int32
}

// Query returns the immutable query this session is running.
func (s *Session) Query() Query {
	return s.query
}

// Matches streams hits in traversal order. The channel is bounded, so a
// slow consumer applies backpressure to the walk instead of growing an
// unbounded buffer.
func (s *Session) Matches() <-chan Match {
	return s.matches
}

// Diags streams the paths the search had to skip.
func (s *Session) Diags() <-chan Diag {
	return s.diags
}

// Cancel asks the traversal to stop. It is cooperative: the engine stops
// issuing new filesystem operations at the next boundary check.
func (s *Session) Cancel() {
	s.cancel()
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Wait blocks until the traversal ends and returns the terminal state.
func (s *Session) Wait() State {
	<-s.done
	return s.State()
}

func (s *Session) finish(cancelled bool) {
	if cancelled {
		s.state.Store(int32(StateCancelled))
	} else {
		s.state.Store(int32(StateCompleted))
	}
	close(s.matches)
	close(s.diags)
	close(s.done)
}
