// Package debug holds assertions that abort development builds.
//
// Assertions are compiled in with the drvfs_debug build tag and are no-ops otherwise.
package debug

import "fmt"

// Assert panics with the formatted message if cond is false and assertions are enabled.
func Assert(cond bool, format string, args ...any) {
	if Enabled && !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
