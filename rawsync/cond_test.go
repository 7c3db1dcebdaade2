package rawsync

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"
)

func waitForWaiters(t *testing.T, c *Cond, n int) {
	t.Helper()
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if c.waiting() == n {
			return poll.Success()
		}
		return poll.Continue("%d waiters", c.waiting())
	}, poll.WithDelay(time.Millisecond), poll.WithTimeout(5*time.Second))
}

func TestCondSignal(t *testing.T) {
	var (
		m    Mutex
		c    Cond
		done = make(chan syscall.Errno)
	)
	for range 2 {
		go func() {
			m.Lock()
			ret := c.Wait(&m)
			m.Unlock()
			done <- ret
		}()
	}
	waitForWaiters(t, &c, 2)

	assert.Equal(t, syscall.EBUSY, c.Destroy())

	assert.Equal(t, syscall.Errno(0), c.Signal())
	assert.Equal(t, syscall.Errno(0), <-done)
	waitForWaiters(t, &c, 1)

	assert.Equal(t, syscall.Errno(0), c.Broadcast())
	assert.Equal(t, syscall.Errno(0), <-done)
	assert.Equal(t, syscall.Errno(0), c.Destroy())
}

func TestCondTimedWait(t *testing.T) {
	start := time.Date(2024, 5, 6, 7, 8, 9, 500, time.UTC)

	t.Run("invalid nsec", func(t *testing.T) {
		var (
			m Mutex
			c Cond
		)
		m.Lock()
		defer m.Unlock()
		assert.Equal(t, syscall.EINVAL, c.TimedWait(&m, Timespec{Sec: 1, Nsec: int64(time.Second)}))
		assert.Equal(t, syscall.EINVAL, c.TimedWait(&m, Timespec{Sec: 1, Nsec: -1}))
	})

	t.Run("deadline in the past", func(t *testing.T) {
		var m Mutex
		c := NewCond(clockwork.NewFakeClockAt(start))
		m.Lock()
		defer m.Unlock()
		assert.Equal(t, syscall.ETIMEDOUT, c.TimedWait(&m, Timespec{Sec: start.Unix() - 1}))
		assert.Assert(t, !m.TryLock(), "mutex must still be held")
	})

	t.Run("times out when the clock passes the deadline", func(t *testing.T) {
		var m Mutex
		fake := clockwork.NewFakeClockAt(start)
		c := NewCond(fake)
		done := make(chan syscall.Errno)
		go func() {
			m.Lock()
			ret := c.TimedWait(&m, Timespec{Sec: start.Unix() + 10, Nsec: 500})
			m.Unlock()
			done <- ret
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NilError(t, fake.BlockUntilContext(ctx, 1))
		fake.Advance(10 * time.Second)

		assert.Equal(t, syscall.ETIMEDOUT, <-done)
		assert.Equal(t, 0, c.waiting())
	})

	t.Run("signal before deadline", func(t *testing.T) {
		var m Mutex
		fake := clockwork.NewFakeClockAt(start)
		c := NewCond(fake)
		done := make(chan syscall.Errno)
		go func() {
			m.Lock()
			ret := c.TimedWait(&m, Timespec{Sec: start.Unix() + 10})
			m.Unlock()
			done <- ret
		}()
		waitForWaiters(t, c, 1)
		c.Signal()
		assert.Equal(t, syscall.Errno(0), <-done)
	})

	t.Run("unrepresentable deadline waits for a signal", func(t *testing.T) {
		var (
			m    Mutex
			c    Cond
			done = make(chan syscall.Errno)
		)
		go func() {
			m.Lock()
			ret := c.TimedWait(&m, TimespecMax)
			m.Unlock()
			done <- ret
		}()
		waitForWaiters(t, &c, 1)
		c.Signal()
		assert.Equal(t, syscall.Errno(0), <-done)
	})
}

func TestUntil(t *testing.T) {
	now := time.Unix(100, 250)
	type testCase struct {
		abs    Timespec
		d      time.Duration
		finite bool
	}
	for _, tc := range []testCase{
		{Timespec{Sec: 100, Nsec: 250}, 0, true},
		{Timespec{Sec: 99, Nsec: 999}, 0, true},
		{Timespec{Sec: 101, Nsec: 0}, time.Second - 250, true},
		{Timespec{Sec: -5}, 0, true},
		{TimespecMax, 0, false},
	} {
		d, finite := until(now, tc.abs)
		assert.Equal(t, tc.finite, finite, "abs = %+v", tc.abs)
		assert.Equal(t, tc.d, d, "abs = %+v", tc.abs)
	}
}
