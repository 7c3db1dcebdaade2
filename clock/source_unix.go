//go:build linux || darwin || freebsd || netbsd || openbsd

package clock

import "golang.org/x/sys/unix"

type sysSource struct{}

// SystemSource returns the Source reading gettimeofday and CLOCK_MONOTONIC.
func SystemSource() Source {
	return sysSource{}
}

func (sysSource) Realtime() (Timeval, error) {
	var tv unix.Timeval
	if err := unix.Gettimeofday(&tv); err != nil {
		return Timeval{}, err
	}
	return Timeval{Sec: int64(tv.Sec), Usec: int64(tv.Usec)}, nil
}

func (sysSource) Monotonic() (Timeval, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return Timeval{}, err
	}
	return Timeval{Sec: int64(ts.Sec), Usec: int64(ts.Nsec) / 1000}, nil
}
