package schedule

import (
	"sort"
	"sync"
	"time"
)

// ManualClock is a Scheduler driven by explicit Advance calls. Callbacks run
// synchronously on the goroutine calling Advance, in due-time order.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	next    Token
	pending map[Token]manualTimer
}

type manualTimer struct {
	due time.Time
	seq Token
	fn  func()
}

// NewManualClock creates a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{
		now:     start,
		pending: make(map[Token]manualTimer),
	}
}

// Now returns the current virtual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Schedule arranges for fn to run once the clock has advanced by delay.
func (c *ManualClock) Schedule(delay time.Duration, fn func()) Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.pending[c.next] = manualTimer{due: c.now.Add(delay), seq: c.next, fn: fn}
	return c.next
}

// Cancel prevents the callback for t from running.
func (c *ManualClock) Cancel(t Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, t)
}

// Pending returns the number of callbacks not yet run or cancelled.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Advance moves the clock forward by d, running every callback that falls due.
// Callbacks scheduled by a running callback also fire if they fall within d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		tok, t, ok := c.earliest(target)
		if !ok {
			c.now = target
			c.mu.Unlock()
			return
		}
		delete(c.pending, tok)
		c.now = t.due
		c.mu.Unlock()

		t.fn()
	}
}

// earliest returns the first timer due at or before target. Caller holds mu.
func (c *ManualClock) earliest(target time.Time) (Token, manualTimer, bool) {
	due := make([]manualTimer, 0, len(c.pending))
	for _, t := range c.pending {
		if !t.due.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return 0, manualTimer{}, false
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0].seq, due[0], true
}
