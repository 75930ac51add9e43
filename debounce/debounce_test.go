package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"loan-calculator/debounce"
	"loan-calculator/debounce/debouncetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_BurstRunsOnceFromLastTrigger(t *testing.T) {
	clock := debouncetest.NewClock()

	var calls int
	var firedAt time.Duration
	d := debounce.New(clock, 150*time.Millisecond, func() {
		calls++
		firedAt = clock.Now()
	})

	for i := 0; i < 5; i++ {
		d.Trigger()
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 0, calls, "no call while edits keep arriving")
	assert.True(t, d.Pending())

	clock.Advance(49 * time.Millisecond)
	assert.Equal(t, 0, calls)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 550*time.Millisecond, firedAt, "timed from the last trigger")
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, 1, calls)
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	clock := debouncetest.NewClock()

	var calls int
	d := debounce.New(clock, 10*time.Millisecond, func() { calls++ })

	d.Trigger()
	clock.Advance(10 * time.Millisecond)
	d.Trigger()
	d.Trigger()
	clock.Advance(10 * time.Millisecond)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, clock.Active())
}

func TestDebouncer_Flush(t *testing.T) {
	clock := debouncetest.NewClock()

	var calls int
	d := debounce.New(clock, time.Second, func() { calls++ })

	assert.False(t, d.Flush(), "nothing pending")

	d.Trigger()
	assert.True(t, d.Flush())
	assert.Equal(t, 1, calls)

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, calls, "flushed timer must not fire again")
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	clock := debouncetest.NewClock()

	var calls int
	d := debounce.New(clock, time.Second, func() { calls++ })

	d.Trigger()
	d.Stop()
	d.Trigger()
	clock.Advance(2 * time.Second)

	assert.Equal(t, 0, calls)
	assert.False(t, d.Pending())
}

func TestDebouncer_RealClock(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{}, 1)
	d := debounce.New(nil, 20*time.Millisecond, func() {
		calls.Add(1)
		done <- struct{}{}
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger()
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "debounced call never ran")
	}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
