package clock

import (
	"fmt"
	"math"
	"time"
)

const nanosPerSec = 1_000_000_000

// Duration is a span of time with a whole-second part and a sub-second part.
//
// Unlike [time.Duration] it can represent spans far beyond 292 years,
// which the timed-wait clamp relies on.
type Duration struct {
	secs  uint64
	nanos uint32 // always < nanosPerSec
}

// MaxDuration is the largest representable Duration.
var MaxDuration = Duration{secs: math.MaxUint64, nanos: nanosPerSec - 1}

// NewDuration returns a Duration of secs seconds plus nanos nanoseconds.
// Excess nanos are carried into seconds; the result saturates at [MaxDuration].
func NewDuration(secs uint64, nanos uint32) Duration {
	carry := uint64(nanos / nanosPerSec)
	s, ok := checkedAdd(secs, carry)
	if !ok {
		return MaxDuration
	}
	return Duration{secs: s, nanos: nanos % nanosPerSec}
}

// Seconds returns a Duration of secs seconds.
func Seconds(secs uint64) Duration {
	return Duration{secs: secs}
}

// FromStd converts d. Negative values become zero.
func FromStd(d time.Duration) Duration {
	if d <= 0 {
		return Duration{}
	}
	return Duration{secs: uint64(d / time.Second), nanos: uint32(d % time.Second)}
}

// Secs returns the whole seconds of d.
func (d Duration) Secs() uint64 { return d.secs }

// SubsecNanos returns the fractional part of d in nanoseconds.
func (d Duration) SubsecNanos() uint32 { return d.nanos }

func (d Duration) IsZero() bool { return d.secs == 0 && d.nanos == 0 }

// Std converts d into a time.Duration, saturating at math.MaxInt64.
func (d Duration) Std() time.Duration {
	if d.secs > uint64(math.MaxInt64/int64(time.Second)) {
		return time.Duration(math.MaxInt64)
	}
	std := time.Duration(d.secs) * time.Second
	if std > time.Duration(math.MaxInt64)-time.Duration(d.nanos) {
		return time.Duration(math.MaxInt64)
	}
	return std + time.Duration(d.nanos)
}

// Compare returns -1, 0 or +1 as d is shorter than, equal to or longer than o.
func (d Duration) Compare(o Duration) int {
	switch {
	case d.secs < o.secs:
		return -1
	case d.secs > o.secs:
		return 1
	case d.nanos < o.nanos:
		return -1
	case d.nanos > o.nanos:
		return 1
	}
	return 0
}

func (d Duration) Less(o Duration) bool { return d.Compare(o) < 0 }

// CheckedAdd returns d+o and false if the sum overflows.
func (d Duration) CheckedAdd(o Duration) (Duration, bool) {
	secs, ok := checkedAdd(d.secs, o.secs)
	if !ok {
		return Duration{}, false
	}
	nanos := d.nanos + o.nanos
	if nanos >= nanosPerSec {
		nanos -= nanosPerSec
		if secs, ok = checkedAdd(secs, 1); !ok {
			return Duration{}, false
		}
	}
	return Duration{secs: secs, nanos: nanos}, true
}

// CheckedSub returns d-o and false if o is longer than d.
func (d Duration) CheckedSub(o Duration) (Duration, bool) {
	if d.Less(o) {
		return Duration{}, false
	}
	secs := d.secs - o.secs
	nanos := d.nanos
	if nanos < o.nanos {
		secs--
		nanos += nanosPerSec
	}
	return Duration{secs: secs, nanos: nanos - o.nanos}, true
}

// SaturatingSub returns d-o or zero if o is longer than d.
func (d Duration) SaturatingSub(o Duration) Duration {
	r, _ := d.CheckedSub(o)
	return r
}

func (d Duration) String() string {
	if d.secs <= uint64(math.MaxInt64/int64(time.Second)) {
		return d.Std().String()
	}
	return fmt.Sprintf("%d.%09ds", d.secs, d.nanos)
}

func checkedAdd(a, b uint64) (uint64, bool) {
	s := a + b
	return s, s >= a
}
