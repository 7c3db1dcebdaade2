package clock

import "time"

// Instant is a reading of the monotonic clock.
// Instants are only meaningful relative to each other.
type Instant struct{ d Duration }

// SystemTime is a reading of the wall clock, measured from [UnixEpoch].
type SystemTime struct{ d Duration }

// UnixEpoch is 1970-01-01 00:00:00 UTC.
var UnixEpoch = SystemTime{}

func (t Instant) Compare(o Instant) int { return t.d.Compare(o.d) }
func (t Instant) Before(o Instant) bool { return t.d.Less(o.d) }

// CheckedSubInstant returns t-o and false if o is later than t.
func (t Instant) CheckedSubInstant(o Instant) (Duration, bool) {
	return t.d.CheckedSub(o.d)
}

func (t Instant) CheckedAdd(d Duration) (Instant, bool) {
	r, ok := t.d.CheckedAdd(d)
	return Instant{r}, ok
}

func (t Instant) CheckedSub(d Duration) (Instant, bool) {
	r, ok := t.d.CheckedSub(d)
	return Instant{r}, ok
}

// SystemTimeFromTimeval converts tv. Times before the epoch become [UnixEpoch].
func SystemTimeFromTimeval(tv Timeval) SystemTime {
	return SystemTime{tv.duration()}
}

// SystemTimeFromUnix returns the SystemTime secs seconds after the epoch.
func SystemTimeFromUnix(secs uint64) SystemTime {
	return SystemTime{Duration{secs: secs}}
}

func (t SystemTime) Compare(o SystemTime) int { return t.d.Compare(o.d) }
func (t SystemTime) Before(o SystemTime) bool { return t.d.Less(o.d) }
func (t SystemTime) Equal(o SystemTime) bool  { return t.d == o.d }

// SinceEpoch returns the time elapsed since [UnixEpoch].
func (t SystemTime) SinceEpoch() Duration { return t.d }

// SubTime returns t-o. If o is later than t, it returns o-t and false.
func (t SystemTime) SubTime(o SystemTime) (Duration, bool) {
	if d, ok := t.d.CheckedSub(o.d); ok {
		return d, true
	}
	d, _ := o.d.CheckedSub(t.d)
	return d, false
}

func (t SystemTime) CheckedAdd(d Duration) (SystemTime, bool) {
	r, ok := t.d.CheckedAdd(d)
	return SystemTime{r}, ok
}

func (t SystemTime) CheckedSub(d Duration) (SystemTime, bool) {
	r, ok := t.d.CheckedSub(d)
	return SystemTime{r}, ok
}

// Time converts t into a time.Time in UTC.
// Values beyond the range of time.Time are clamped to its maximum Unix second.
func (t SystemTime) Time() time.Time {
	secs := t.d.secs
	const maxUnix = 1<<63 - 1 - 62135596800 // keep time.Unix from overflowing its internal offset
	if secs > maxUnix {
		secs = maxUnix
	}
	return time.Unix(int64(secs), int64(t.d.nanos)).UTC()
}

func (t SystemTime) String() string {
	return t.Time().Format(time.RFC3339Nano)
}
