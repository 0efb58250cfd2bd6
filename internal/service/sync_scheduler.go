package service

import (
	"sync"
	"time"
)

// syncScheduler owns the single debounce timer of the orchestrator. Every
// Schedule call cancels and replaces the pending one.
type syncScheduler struct {
	delay time.Duration
	fire  func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func newSyncScheduler(delay time.Duration, fire func()) *syncScheduler {
	return &syncScheduler{delay: delay, fire: fire}
}

// Schedule (re)starts the debounce window.
func (s *syncScheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if gen != s.gen {
			// replaced after the timer already fired
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		s.fire()
	})
}

// Cancel drops the pending trigger, if any.
func (s *syncScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// Pending reports whether a trigger is waiting for its window to end.
func (s *syncScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
