package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type clockworkSource struct {
	c    clockwork.Clock
	base time.Time
}

// FromClockwork returns a Source reading c.
//
// The monotonic reading is the time elapsed on c since the call to FromClockwork,
// so a [clockwork.FakeClock] drives both readings.
func FromClockwork(c clockwork.Clock) Source {
	return &clockworkSource{c: c, base: c.Now()}
}

func (s *clockworkSource) Realtime() (Timeval, error) {
	return TimevalOf(s.c.Now()), nil
}

func (s *clockworkSource) Monotonic() (Timeval, error) {
	d := s.c.Since(s.base)
	if d < 0 {
		d = 0
	}
	return Timeval{Sec: int64(d / time.Second), Usec: int64(d%time.Second) / 1000}, nil
}
