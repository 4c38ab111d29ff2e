package schedule

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/dealwatch/internal/model"
)

// State is the Refresher state.
type State int

const (
	// StateIdle means no recurring timer is armed.
	StateIdle State = iota
	// StateActive means a recurring timer fires every Interval.
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// Refresher drives the recurring auto-refresh timer. At most one timer is
// armed at any time. Not safe for concurrent use: call it from the goroutine
// that runs the scheduler's callbacks.
type Refresher struct {
	sched    Scheduler
	fire     func()
	logger   *slog.Logger
	state    State
	interval time.Duration
	token    Token
}

// NewRefresher creates an idle Refresher that calls fire on every tick.
func NewRefresher(sched Scheduler, fire func(), logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		sched:  sched,
		fire:   fire,
		logger: logger,
	}
}

// Configure tears down the current timer and, if AutoRefresh is set, arms a
// new one at the clamped interval.
func (r *Refresher) Configure(s model.Settings) {
	r.Stop()
	if !s.AutoRefresh {
		return
	}

	r.state = StateActive
	r.interval = time.Duration(model.ClampInterval(s.IntervalSec)) * time.Second
	r.arm()
	r.logger.Debug("auto-refresh active", "interval", r.interval)
}

// Stop cancels the timer and returns to Idle.
func (r *Refresher) Stop() {
	if r.token != 0 {
		r.sched.Cancel(r.token)
		r.token = 0
	}
	if r.state == StateActive {
		r.logger.Debug("auto-refresh idle")
	}
	r.state = StateIdle
	r.interval = 0
}

// State returns the current state.
func (r *Refresher) State() State {
	return r.state
}

// Interval returns the active interval, or 0 when idle.
func (r *Refresher) Interval() time.Duration {
	return r.interval
}

func (r *Refresher) arm() {
	var tok Token
	tok = r.sched.Schedule(r.interval, func() {
		// A superseded timer whose cancellation lost the race must not re-arm.
		if r.token != tok {
			return
		}
		r.arm()
		r.fire()
	})
	r.token = tok
}
