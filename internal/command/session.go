package command

import "sync/atomic"

// Session holds the loop's running flag.
type Session struct {
	stopped atomic.Bool
}

// NewSession returns a running session.
func NewSession() *Session { return &Session{} }

// Running reports whether stop has not been requested.
func (s *Session) Running() bool { return !s.stopped.Load() }

// Stop ends the session. It reports whether this call changed the state.
func (s *Session) Stop() bool { return s.stopped.CompareAndSwap(false, true) }
