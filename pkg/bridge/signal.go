// ABOUTME: Binary cross-context signal implementation
// ABOUTME: Set/observe flag with consume-on-wait semantics
package bridge

import (
	"context"
	"sync"
)

// Signal is a binary flag set by one side and consumed by the other.
// Setting an already-set signal is a no-op, not a queue: edges between
// observations collapse into one.
type Signal struct {
	mu  sync.Mutex
	set bool
	ch  chan struct{} // closed while set
}

// NewSignal creates a cleared signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Set raises the signal and wakes any waiter.
func (s *Signal) Set() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		s.set = true
		close(s.ch)
	}
}

// IsSet reports whether the signal is currently raised, without consuming it.
func (s *Signal) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Clear lowers the signal without observing it.
func (s *Signal) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// TryConsume atomically observes and clears the signal, reporting whether
// it was set.
func (s *Signal) TryConsume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		return false
	}
	s.clearLocked()
	return true
}

// Wait blocks until the signal is raised, then consumes it. The context
// bounds the wait; ctx.Err() is returned if it expires first.
func (s *Signal) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.set {
			s.clearLocked()
			s.mu.Unlock()
			return nil
		}
		ch := s.ch
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Signal) clearLocked() {
	if s.set {
		s.set = false
		s.ch = make(chan struct{})
	}
}
