// Package clock provides the wall and monotonic time readings used by timed waits
// and file attribute timestamps.
package clock

import (
	"sync"
	"time"
)

// WallClock is an interface wrapping basic Now method, which returns wall clock time.
// For real clock that wraps [time.Now], use [RealWallClock].
type WallClock interface {
	Now() time.Time
}

type realWallClock struct{}

func (c realWallClock) Now() time.Time {
	return time.Now()
}

func RealWallClock() WallClock {
	return realWallClock{}
}

// Timeval is a seconds/microseconds pair as reported by the platform clock.
type Timeval struct {
	Sec  int64
	Usec int64
}

// TimevalOf converts t.
func TimevalOf(t time.Time) Timeval {
	return Timeval{Sec: t.Unix(), Usec: int64(t.Nanosecond() / 1000)}
}

func (tv Timeval) duration() Duration {
	if tv.Sec < 0 || tv.Usec < 0 {
		return Duration{}
	}
	secs, ok := checkedAdd(uint64(tv.Sec), uint64(tv.Usec/1_000_000))
	if !ok {
		return MaxDuration
	}
	return Duration{secs: secs, nanos: uint32(tv.Usec%1_000_000) * 1000}
}

// Source is the platform time query.
type Source interface {
	// Realtime reads the wall clock.
	Realtime() (Timeval, error)
	// Monotonic reads a clock that never goes backwards.
	Monotonic() (Timeval, error)
}

// Clock lifts a [Source] into [SystemTime] and [Instant] values.
//
// A failing query yields the zero value instead of an error.
type Clock struct {
	src Source
}

func New(src Source) *Clock {
	return &Clock{src: src}
}

var (
	defaultOnce  sync.Once
	defaultClock *Clock
)

// Default returns the Clock backed by [SystemSource].
func Default() *Clock {
	defaultOnce.Do(func() {
		defaultClock = New(SystemSource())
	})
	return defaultClock
}

// Now reads the wall clock.
func (c *Clock) Now() SystemTime {
	tv, err := c.src.Realtime()
	if err != nil {
		return UnixEpoch
	}
	return SystemTimeFromTimeval(tv)
}

// Instant reads the monotonic clock.
func (c *Clock) Instant() Instant {
	tv, err := c.src.Monotonic()
	if err != nil {
		return Instant{}
	}
	return Instant{tv.duration()}
}

// Realtime reads the raw wall clock.
func (c *Clock) Realtime() (Timeval, error) {
	return c.src.Realtime()
}

// Elapsed returns the monotonic time passed since start, or zero if the clock went backwards.
func (c *Clock) Elapsed(start Instant) Duration {
	d, _ := c.Instant().CheckedSubInstant(start)
	return d
}
