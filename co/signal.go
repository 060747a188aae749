// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Signal announces events to any number of waiters. Unlike sync.Cond it is
// channel based, so waiting can be combined with other cases in a select.
type Signal struct {
	mu sync.Mutex
	// closed and dropped on broadcast, lazily recreated
	ch chan struct{}
}

func (s *Signal) current() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast wakes every waiter.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
}

// NewWaiter returns a waiter that observes broadcasts from now on.
func (s *Signal) NewWaiter() *Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Waiter{s: s, ch: s.current()}
}

// Waiter follows a Signal. It is meant to be used by one goroutine.
type Waiter struct {
	s  *Signal
	ch chan struct{}
}

// C returns a channel closed by the first broadcast since the previous call
// to C, or since the waiter was created.
func (w *Waiter) C() <-chan struct{} {
	ch := w.ch

	w.s.mu.Lock()
	w.ch = w.s.current()
	w.s.mu.Unlock()

	return ch
}
