package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "clock.Now() should not return time before actual time.Now()")
	assert.False(t, got.After(after), "clock.Now() should not return time after actual time.Now()")
}

func TestRealClock_AfterFunc(t *testing.T) {
	c := RealClock{}

	t.Run("fires after duration", func(t *testing.T) {
		fired := make(chan struct{})
		c.AfterFunc(time.Millisecond, func() { close(fired) })

		select {
		case <-fired:
		case <-time.After(time.Second):
			require.Fail(t, "timer did not fire")
		}
	})

	t.Run("stop prevents firing", func(t *testing.T) {
		fired := make(chan struct{}, 1)
		timer := c.AfterFunc(time.Hour, func() { fired <- struct{}{} })

		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop(), "second stop reports already stopped")
		assert.Empty(t, fired)
	})
}
