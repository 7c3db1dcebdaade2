// Package condvar implements a condition variable with bounded waits over the raw platform primitive.
//
// The raw timed wait takes an absolute wall-clock deadline, which a clock adjustment can move
// and which some implementations mishandle for very long durations.
// [Cond.WaitTimeout] clamps the requested duration and decides whether the wait timed out
// from monotonic elapsed time, never from the raw primitive's own result.
package condvar

import (
	"math"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ngicks/go-fsys-helper/drvfs/clock"
	"github.com/ngicks/go-fsys-helper/drvfs/internal/debug"
	"github.com/ngicks/go-fsys-helper/drvfs/rawsync"
)

// MaxWait is the longest wait passed down to the raw primitive: 1000 years.
var MaxWait = clock.Seconds(1000 * 365 * 86400)

type raw interface {
	Signal() syscall.Errno
	Broadcast() syscall.Errno
	Wait(m *rawsync.Mutex) syscall.Errno
	TimedWait(m *rawsync.Mutex, abstime rawsync.Timespec) syscall.Errno
	Destroy() syscall.Errno
}

// Cond is a condition variable associated with a [rawsync.Mutex] at each wait.
//
// A Cond must be created with [New] and must not be copied.
// Waiter queuing, ordering and fairness are those of the raw primitive.
type Cond struct {
	_ noCopy

	// inner lives on the heap so its address stays fixed for the primitive's lifetime.
	inner raw
	clock *clock.Clock
}

type Option func(c *Cond)

// WithClock measures deadlines and elapsed time against c.
// Both the raw primitive and the elapsed time check observe the same clock.
func WithClock(c clockwork.Clock) Option {
	return func(cond *Cond) {
		cond.inner = rawsync.NewCond(c)
		cond.clock = clock.New(clock.FromClockwork(c))
	}
}

func withRaw(r raw) Option {
	return func(c *Cond) {
		c.inner = r
	}
}

// New returns a Cond over the platform primitive and clock.
func New(opts ...Option) *Cond {
	c := &Cond{}
	for _, opt := range opts {
		opt(c)
	}
	if c.inner == nil {
		c.inner = new(rawsync.Cond)
	}
	if c.clock == nil {
		c.clock = clock.Default()
	}
	return c
}

// Signal wakes one waiter.
func (c *Cond) Signal() {
	r := c.inner.Signal()
	debug.Assert(r == 0, "cond signal returned %v", r)
}

// Broadcast wakes all waiters.
func (c *Cond) Broadcast() {
	r := c.inner.Broadcast()
	debug.Assert(r == 0, "cond broadcast returned %v", r)
}

// Wait unlocks m, blocks until woken, and locks m again before returning.
// m must be held by the caller. Wakeups may be spurious.
func (c *Cond) Wait(m *rawsync.Mutex) {
	r := c.inner.Wait(m)
	debug.Assert(r == 0, "cond wait returned %v", r)
}

// WaitTimeout is like Wait but gives up after d.
//
// d is clamped to [MaxWait]. It reports true if it returned before d elapsed
// on the monotonic clock, and false if the wait timed out.
// Wakeups may be spurious: a true result does not imply a signal was sent.
func (c *Cond) WaitTimeout(m *rawsync.Mutex, d clock.Duration) bool {
	if MaxWait.Less(d) {
		d = MaxWait
	}

	start := c.clock.Instant()
	now, err := c.clock.Realtime()
	debug.Assert(err == nil, "gettimeofday: %v", err)

	r := c.inner.TimedWait(m, deadline(now, d))
	debug.Assert(r == 0 || r == syscall.ETIMEDOUT, "cond timedwait returned %v", r)

	// ETIMEDOUT is unreliable across clock shifts.
	return c.clock.Elapsed(start).Less(d)
}

// WaitTimeoutStd is WaitTimeout taking a time.Duration. A negative d is treated as zero.
func (c *Cond) WaitTimeoutStd(m *rawsync.Mutex, d time.Duration) bool {
	return c.WaitTimeout(m, clock.FromStd(d))
}

// Destroy releases the raw primitive. No thread may be waiting on c.
func (c *Cond) Destroy() {
	r := c.inner.Destroy()
	debug.Assert(r == 0, "cond destroy returned %v", r)
}

// deadline returns now+d as an absolute time, saturating to [rawsync.TimespecMax] on overflow.
func deadline(now clock.Timeval, d clock.Duration) rawsync.Timespec {
	nsec := int64(d.SubsecNanos()) + now.Usec*1000
	extra := nsec / int64(time.Second)
	nsec %= int64(time.Second)

	secs := int64(math.MaxInt64)
	if d.Secs() <= math.MaxInt64 {
		secs = int64(d.Secs())
	}

	s, ok := checkedAdd(now.Sec, extra)
	if ok {
		s, ok = checkedAdd(s, secs)
	}
	if !ok {
		return rawsync.TimespecMax
	}
	return rawsync.Timespec{Sec: s, Nsec: nsec}
}

func checkedAdd(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

// noCopy triggers go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
