package calc

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_LastCallWins(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var first, second atomic.Int32
	d.Trigger(func() { first.Add(1) })
	d.Trigger(func() { second.Add(1) })

	assert.Eventually(t, func() bool {
		return second.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// The superseded call never fires.
	assert.Equal(t, int32(0), first.Load())
}

func TestDebouncer_FlushRunsPendingNow(t *testing.T) {
	d := NewDebouncer(time.Hour)

	var ran atomic.Int32
	d.Trigger(func() { ran.Add(1) })
	d.Flush()

	assert.Equal(t, int32(1), ran.Load())

	// Flush with nothing pending is a no-op.
	d.Flush()
	assert.Equal(t, int32(1), ran.Load())
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var ran atomic.Int32
	d.Trigger(func() { ran.Add(1) })
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), ran.Load())
}

func TestDebouncer_ZeroWindowRunsInline(t *testing.T) {
	d := NewDebouncer(0)

	var ran atomic.Int32
	d.Trigger(func() { ran.Add(1) })

	assert.Equal(t, int32(1), ran.Load())
}
