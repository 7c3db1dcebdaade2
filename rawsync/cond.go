package rawsync

import (
	"math"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timespec is an absolute wall-clock time.
type Timespec struct {
	Sec  int64
	Nsec int64
}

// TimespecMax is the latest representable Timespec.
var TimespecMax = Timespec{Sec: math.MaxInt64, Nsec: 999_999_999}

func (ts Timespec) valid() bool {
	return ts.Nsec >= 0 && ts.Nsec < int64(time.Second)
}

// Cond is a raw condition variable.
//
// The zero value is ready to use and measures deadlines against the real wall clock.
// Waiters are woken in FIFO order.
type Cond struct {
	clock clockwork.Clock

	mu      sync.Mutex
	waiters []chan struct{}
}

// NewCond returns a Cond measuring deadlines against clock.
func NewCond(clock clockwork.Clock) *Cond {
	return &Cond{clock: clock}
}

func (c *Cond) wallClock() clockwork.Clock {
	if c.clock == nil {
		return clockwork.NewRealClock()
	}
	return c.clock
}

// Signal wakes one waiter, if any.
func (c *Cond) Signal() syscall.Errno {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) > 0 {
		close(c.waiters[0])
		c.waiters = c.waiters[1:]
	}
	return 0
}

// Broadcast wakes all waiters.
func (c *Cond) Broadcast() syscall.Errno {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range c.waiters {
		close(w)
	}
	c.waiters = nil
	return 0
}

func (c *Cond) enqueue() chan struct{} {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

// dequeue removes ch from the queue.
// It reports false if ch was already removed by a signal.
func (c *Cond) dequeue(ch chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Wait atomically unlocks m and blocks until signaled, then locks m again.
// m must be held by the caller.
func (c *Cond) Wait(m *Mutex) syscall.Errno {
	ch := c.enqueue()
	m.Unlock()
	<-ch
	m.Lock()
	return 0
}

// TimedWait is like Wait but gives up once the wall clock reaches abstime.
//
// It returns EINVAL for a malformed abstime and ETIMEDOUT if the deadline passed before a signal.
// A deadline too far in the future to be represented as a timer waits without a timeout.
func (c *Cond) TimedWait(m *Mutex, abstime Timespec) syscall.Errno {
	if !abstime.valid() {
		return syscall.EINVAL
	}
	clock := c.wallClock()
	d, finite := until(clock.Now(), abstime)
	if finite && d <= 0 {
		return syscall.ETIMEDOUT
	}
	if !finite {
		return c.Wait(m)
	}

	ch := c.enqueue()
	timer := clock.NewTimer(d)
	m.Unlock()

	var ret syscall.Errno
	select {
	case <-ch:
	case <-timer.Chan():
		if c.dequeue(ch) {
			ret = syscall.ETIMEDOUT
		}
		// else a signal raced the timer and consumed our slot; report it as a wakeup.
	}
	timer.Stop()

	m.Lock()
	return ret
}

// maxTimerSecs keeps the computed wait inside time.Duration.
const maxTimerSecs = math.MaxInt64/int64(time.Second) - 1

// until returns the time from now to abstime.
// finite is false if the distance does not fit a time.Duration.
func until(now time.Time, abstime Timespec) (d time.Duration, finite bool) {
	nowSec := now.Unix()
	if abstime.Sec < nowSec {
		return 0, true
	}
	secs := abstime.Sec - nowSec
	if secs >= maxTimerSecs {
		return 0, false
	}
	return time.Duration(secs)*time.Second + time.Duration(abstime.Nsec-int64(now.Nanosecond())), true
}

// Destroy releases c. It returns EBUSY while any thread is waiting on c.
func (c *Cond) Destroy() syscall.Errno {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) > 0 {
		return syscall.EBUSY
	}
	return 0
}

func (c *Cond) waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
