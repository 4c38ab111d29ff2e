package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/dealwatch/internal/model"
)

func settingsOn(sec int) model.Settings {
	return model.Settings{AutoRefresh: true, IntervalSec: sec}
}

func TestTimerScheduler_RunsThroughDispatcher(t *testing.T) {
	loop := make(chan func(), 4)
	s := NewTimerScheduler(func(fn func()) { loop <- fn })

	done := make(chan struct{})
	s.Schedule(10*time.Millisecond, func() { close(done) })

	select {
	case fn := <-loop:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("timer never dispatched")
	}

	select {
	case <-done:
	default:
		t.Fatal("callback did not run")
	}
	assert.Equal(t, 0, s.Pending())
}

func TestTimerScheduler_CancelAfterFireBeforeDispatch(t *testing.T) {
	loop := make(chan func(), 4)
	s := NewTimerScheduler(func(fn func()) { loop <- fn })

	ran := false
	tok := s.Schedule(time.Millisecond, func() { ran = true })

	var fn func()
	select {
	case fn = <-loop:
	case <-time.After(5 * time.Second):
		t.Fatal("timer never dispatched")
	}

	// Cancelled on the loop before the queued callback is processed.
	s.Cancel(tok)
	fn()

	assert.False(t, ran)
}

func TestTimerScheduler_Cancel(t *testing.T) {
	var mu sync.Mutex
	ran := false
	s := NewTimerScheduler(nil)

	tok := s.Schedule(50*time.Millisecond, func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	})
	require.Equal(t, 1, s.Pending())
	s.Cancel(tok)
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, ran)
	assert.Equal(t, 0, s.Pending())
}

func TestTimerScheduler_Stop(t *testing.T) {
	s := NewTimerScheduler(nil)
	s.Schedule(time.Hour, func() {})
	s.Schedule(time.Hour, func() {})
	require.Equal(t, 2, s.Pending())

	s.Stop()
	assert.Equal(t, 0, s.Pending())
}
