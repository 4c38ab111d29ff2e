package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/dealwatch/internal/adapter/input"
	"github.com/jmylchreest/dealwatch/internal/app"
)

// EventLoop carries callbacks from timer and watcher goroutines onto the
// bubbletea update loop, where the dashboard may be mutated.
type EventLoop struct {
	ch   chan func()
	done chan struct{}
	once sync.Once
}

// NewEventLoop creates an EventLoop.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		ch:   make(chan func(), 64),
		done: make(chan struct{}),
	}
}

// Dispatch queues fn to run on the update loop. Dropped after Close.
func (l *EventLoop) Dispatch(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.ch <- fn:
	case <-l.done:
	}
}

// Close releases goroutines blocked in Dispatch or wait.
func (l *EventLoop) Close() {
	l.once.Do(func() { close(l.done) })
}

// wait blocks until a callback is queued.
func (l *EventLoop) wait() tea.Msg {
	select {
	case <-l.done:
		return nil
	default:
	}
	select {
	case fn := <-l.ch:
		return dispatchMsg{fn: fn}
	case <-l.done:
		return nil
	}
}

type dispatchMsg struct {
	fn func()
}

// FetchQueue collects fetch requests issued by the dashboard during one
// update so they can be returned as commands.
type FetchQueue struct {
	pending []app.FetchRequest
	timeout time.Duration
}

// NewFetchQueue creates a FetchQueue. timeout bounds each request (0 = none).
func NewFetchQueue(timeout time.Duration) *FetchQueue {
	return &FetchQueue{timeout: timeout}
}

// Push queues req. Used as the dashboard's launch hook.
func (q *FetchQueue) Push(req app.FetchRequest) {
	q.pending = append(q.pending, req)
}

// Len returns the number of queued requests.
func (q *FetchQueue) Len() int {
	return len(q.pending)
}

// commands drains the queue into one command per request. Each command
// performs the request off the loop.
func (q *FetchQueue) commands() []tea.Cmd {
	if q == nil || len(q.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(q.pending))
	for _, req := range q.pending {
		cmds = append(cmds, q.command(req))
	}
	q.pending = q.pending[:0]
	return cmds
}

func (q *FetchQueue) command(req app.FetchRequest) tea.Cmd {
	timeout := q.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		res, err := req.Do(ctx)
		return fetchResultMsg{req: req, res: res, err: err}
	}
}

type fetchResultMsg struct {
	req app.FetchRequest
	res input.Result
	err error
}
