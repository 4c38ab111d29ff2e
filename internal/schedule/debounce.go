package schedule

import "time"

// DefaultDebounce is the quiet window applied to filter input.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer collapses bursts of Trigger calls into one call of fn, fired
// Window after the last trigger. Not safe for concurrent use.
type Debouncer struct {
	sched  Scheduler
	window time.Duration
	fn     func()
	token  Token
}

// NewDebouncer creates a Debouncer. A non-positive window uses DefaultDebounce.
func NewDebouncer(sched Scheduler, window time.Duration, fn func()) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{
		sched:  sched,
		window: window,
		fn:     fn,
	}
}

// Trigger restarts the quiet window.
func (d *Debouncer) Trigger() {
	d.Cancel()
	var tok Token
	tok = d.sched.Schedule(d.window, func() {
		if d.token != tok {
			return
		}
		d.token = 0
		d.fn()
	})
	d.token = tok
}

// Cancel drops a pending call, if any.
func (d *Debouncer) Cancel() {
	if d.token != 0 {
		d.sched.Cancel(d.token)
		d.token = 0
	}
}

// Pending reports whether a call is waiting for the window to close.
func (d *Debouncer) Pending() bool {
	return d.token != 0
}

// Window returns the quiet window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}
