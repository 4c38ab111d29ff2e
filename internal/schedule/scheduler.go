// Package schedule provides timers for the refresh pipeline: a Scheduler
// abstraction with wall-clock and manual implementations, the auto-refresh
// Refresher and the filter-input Debouncer.
package schedule

import (
	"sync"
	"time"
)

// Token identifies a scheduled callback. The zero Token is never issued.
type Token uint64

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	// Schedule arranges for fn to run once after delay.
	Schedule(delay time.Duration, fn func()) Token

	// Cancel prevents the callback for t from running. Unknown tokens are ignored.
	Cancel(t Token)

	// Pending returns the number of callbacks scheduled but not yet run or cancelled.
	Pending() int
}

// Dispatcher hands a callback to the goroutine that owns application state.
type Dispatcher func(fn func())

// TimerScheduler is a wall-clock Scheduler. Fired callbacks are passed to the
// dispatcher rather than run on the timer goroutine, so they execute on the
// event loop. A token cancelled after its timer fired but before the dispatched
// callback ran is still honoured.
type TimerScheduler struct {
	mu       sync.Mutex
	dispatch Dispatcher
	next     Token
	timers   map[Token]*time.Timer
}

// NewTimerScheduler creates a TimerScheduler. A nil dispatcher runs callbacks
// directly on the timer goroutine.
func NewTimerScheduler(dispatch Dispatcher) *TimerScheduler {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &TimerScheduler{
		dispatch: dispatch,
		timers:   make(map[Token]*time.Timer),
	}
}

// Schedule arranges for fn to run once after delay.
func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	tok := s.next
	s.timers[tok] = time.AfterFunc(delay, func() {
		s.dispatch(func() {
			if s.take(tok) {
				fn()
			}
		})
	})
	return tok
}

// take removes tok and reports whether it was still live.
func (s *TimerScheduler) take(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[tok]; !ok {
		return false
	}
	delete(s.timers, tok)
	return true
}

// Cancel prevents the callback for t from running.
func (s *TimerScheduler) Cancel(t Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[t]; ok {
		timer.Stop()
		delete(s.timers, t)
	}
}

// Pending returns the number of live callbacks.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending callback.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, timer := range s.timers {
		timer.Stop()
		delete(s.timers, tok)
	}
}
