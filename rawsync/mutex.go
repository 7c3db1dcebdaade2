// Package rawsync provides the platform's raw thread primitives:
// a mutex and a condition variable whose timed wait takes an absolute wall-clock deadline.
//
// Like their platform counterparts, the primitives report failures as errno values
// and make no attempt to guard against clock adjustments or overflowing deadlines.
package rawsync

import "sync"

// Mutex is a raw mutex. The zero value is unlocked.
// A Mutex must not be copied after first use.
type Mutex struct {
	mu sync.Mutex
}

func (m *Mutex) Lock()         { m.mu.Lock() }
func (m *Mutex) Unlock()       { m.mu.Unlock() }
func (m *Mutex) TryLock() bool { return m.mu.TryLock() }
