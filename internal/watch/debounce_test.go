package watch

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/gitpulse/internal/testutil"
)

func TestDebouncer_RestartsWindowOnTrigger(t *testing.T) {
	t.Parallel()

	clk := testutil.NewFakeClock(time.Unix(0, 0))
	var calls atomic.Int32
	d := NewDebouncer(clk, 100*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	clk.Advance(60 * time.Millisecond)
	d.Trigger()
	clk.Advance(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.True(t, d.Pending())

	clk.Advance(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())
	assert.Equal(t, 0, clk.PendingTimers())
}

func TestDebouncer_CancelAndFlush(t *testing.T) {
	t.Parallel()

	clk := testutil.NewFakeClock(time.Unix(0, 0))
	var calls atomic.Int32
	d := NewDebouncer(clk, 100*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Cancel()
	clk.Advance(time.Second)
	assert.Equal(t, int32(0), calls.Load())

	d.Trigger()
	d.Flush()
	assert.Equal(t, int32(1), calls.Load())

	clk.Advance(time.Second)
	assert.Equal(t, int32(1), calls.Load())
}
