package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualClock_FiresInOrder(t *testing.T) {
	c := NewManualClock(epoch)
	var got []string

	c.Schedule(3*time.Second, func() { got = append(got, "c") })
	c.Schedule(1*time.Second, func() { got = append(got, "a") })
	c.Schedule(2*time.Second, func() { got = append(got, "b") })

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
}

func TestManualClock_Cancel(t *testing.T) {
	c := NewManualClock(epoch)
	fired := false

	tok := c.Schedule(time.Second, func() { fired = true })
	c.Cancel(tok)
	c.Advance(time.Minute)

	assert.False(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestManualClock_ChainedCallbacksWithinWindow(t *testing.T) {
	c := NewManualClock(epoch)
	count := 0

	var tick func()
	tick = func() {
		count++
		c.Schedule(time.Second, tick)
	}
	c.Schedule(time.Second, tick)

	c.Advance(5 * time.Second)
	assert.Equal(t, 5, count)
	assert.Equal(t, 1, c.Pending())
}
