//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package clock

import "github.com/jonboulle/clockwork"

// SystemSource returns the Source reading the runtime's wall and monotonic clocks.
func SystemSource() Source {
	return FromClockwork(clockwork.NewRealClock())
}
