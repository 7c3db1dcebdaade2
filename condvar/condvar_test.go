package condvar

import (
	"math"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ngicks/go-fsys-helper/drvfs/clock"
	"github.com/ngicks/go-fsys-helper/drvfs/rawsync"
	"gotest.tools/v3/assert"
)

// fakeRaw returns from TimedWait without blocking, optionally advancing a fake clock first.
type fakeRaw struct {
	rawsync.Cond
	fake    *clockwork.FakeClock
	advance time.Duration
	ret     syscall.Errno

	abstime []rawsync.Timespec
}

func (f *fakeRaw) TimedWait(m *rawsync.Mutex, abstime rawsync.Timespec) syscall.Errno {
	f.abstime = append(f.abstime, abstime)
	if f.advance > 0 {
		f.fake.Advance(f.advance)
	}
	return f.ret
}

var start = time.Date(2023, 3, 4, 5, 6, 7, 8_000, time.UTC)

func newFake(advance time.Duration, ret syscall.Errno) (*Cond, *fakeRaw) {
	fake := clockwork.NewFakeClockAt(start)
	r := &fakeRaw{fake: fake, advance: advance, ret: ret}
	return New(WithClock(fake), withRaw(r)), r
}

func TestWaitTimeoutZero(t *testing.T) {
	var m rawsync.Mutex
	c := New()
	defer c.Destroy()

	m.Lock()
	defer m.Unlock()

	begin := time.Now()
	assert.Assert(t, !c.WaitTimeout(&m, clock.Duration{}))
	assert.Assert(t, !c.WaitTimeoutStd(&m, -time.Second))
	assert.Assert(t, time.Since(begin) < time.Second, "took %s", time.Since(begin))
	assert.Assert(t, !m.TryLock(), "mutex must be held after return")
}

func TestWaitTimeoutClamp(t *testing.T) {
	c, r := newFake(0, 0)

	var m rawsync.Mutex
	m.Lock()
	// a spurious wakeup: nothing elapsed, so not timed out.
	assert.Assert(t, c.WaitTimeout(&m, clock.Seconds(10_000*365*86400)))
	assert.Assert(t, c.WaitTimeout(&m, clock.MaxDuration))
	m.Unlock()

	want := rawsync.Timespec{Sec: start.Unix() + 1000*365*86400, Nsec: 8_000}
	assert.DeepEqual(t, []rawsync.Timespec{want, want}, r.abstime)
}

func TestWaitTimeoutUsesMonotonicElapsed(t *testing.T) {
	var m rawsync.Mutex
	m.Lock()
	defer m.Unlock()

	t.Run("raw success after the duration elapsed", func(t *testing.T) {
		c, _ := newFake(2*time.Second, 0)
		assert.Assert(t, !c.WaitTimeoutStd(&m, 2*time.Second))
	})
	t.Run("raw timeout before the duration elapsed", func(t *testing.T) {
		c, _ := newFake(time.Second, syscall.ETIMEDOUT)
		assert.Assert(t, c.WaitTimeoutStd(&m, 2*time.Second))
	})
	t.Run("raw timeout long before the clamp", func(t *testing.T) {
		// about 292 years
		c, _ := newFake(time.Duration(math.MaxInt64), syscall.ETIMEDOUT)
		assert.Assert(t, c.WaitTimeout(&m, clock.MaxDuration))
	})
}

func TestWaitTimeoutSignal(t *testing.T) {
	var (
		m     rawsync.Mutex
		ready bool
		wg    sync.WaitGroup
	)
	c := New()
	defer c.Destroy()

	results := make(chan bool, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			defer m.Unlock()
			for !ready {
				if !c.WaitTimeout(&m, clock.Seconds(10_000*365*86400)) {
					results <- false
					return
				}
			}
			results <- true
		}()
	}

	m.Lock()
	ready = true
	c.Broadcast()
	m.Unlock()

	wg.Wait()
	close(results)
	for r := range results {
		assert.Assert(t, r)
	}
}

func TestWait(t *testing.T) {
	var (
		m    rawsync.Mutex
		done bool
	)
	c := New()
	finished := make(chan struct{})
	go func() {
		m.Lock()
		for !done {
			c.Wait(&m)
		}
		m.Unlock()
		close(finished)
	}()

	m.Lock()
	done = true
	c.Signal()
	m.Unlock()
	<-finished
	c.Destroy()
}

func TestDeadline(t *testing.T) {
	type testCase struct {
		name string
		now  clock.Timeval
		d    clock.Duration
		want rawsync.Timespec
	}
	for _, tc := range []testCase{
		{
			name: "no carry",
			now:  clock.Timeval{Sec: 10, Usec: 5},
			d:    clock.NewDuration(3, 7),
			want: rawsync.Timespec{Sec: 13, Nsec: 5_007},
		},
		{
			name: "carry into seconds",
			now:  clock.Timeval{Sec: 10, Usec: 999_999},
			d:    clock.NewDuration(1, 2_000),
			want: rawsync.Timespec{Sec: 12, Nsec: 1_000},
		},
		{
			name: "seconds saturate",
			now:  clock.Timeval{Sec: 10},
			d:    clock.MaxDuration,
			want: rawsync.TimespecMax,
		},
		{
			name: "fits exactly",
			now:  clock.Timeval{Sec: math.MaxInt64 - 1},
			d:    clock.Seconds(1),
			want: rawsync.Timespec{Sec: math.MaxInt64},
		},
		{
			name: "carry overflows",
			now:  clock.Timeval{Sec: math.MaxInt64, Usec: 999_999},
			d:    clock.NewDuration(0, 1_000),
			want: rawsync.TimespecMax,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deadline(tc.now, tc.d))
		})
	}
}
