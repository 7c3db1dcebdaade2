// Package drivertest wraps a [driver.Driver] to observe and disturb it in tests.
//
// [Driver] records every call, injects failures and panics by operation and path,
// and reports any two calls that used the same open object at the same time.
package drivertest

import (
	"bytes"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ngicks/go-fsys-helper/drvfs/clock"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
)

// Op names a driver method.
type Op string

const (
	OpOpen     Op = "Open"
	OpClose    Op = "Close"
	OpRead     Op = "Read"
	OpWrite    Op = "Write"
	OpLseek    Op = "Lseek"
	OpTruncate Op = "Truncate"
	OpSync     Op = "Sync"
	OpTell     Op = "Tell"
	OpStat     Op = "Stat"
	OpChmod    Op = "Chmod"
	OpMkdir    Op = "Mkdir"
	OpUnlink   Op = "Unlink"
	OpRename   Op = "Rename"
	OpOpenDir  Op = "OpenDir"
	OpReadDir  Op = "ReadDir"
	OpCloseDir Op = "CloseDir"
	OpGetcwd   Op = "Getcwd"
	OpChdir    Op = "Chdir"
)

// Call is one recorded driver call.
type Call struct {
	Timestamp time.Time
	Op        Op
	// Path is the path argument, or the path the object was opened with.
	Path string
	// Data is a copy of the buffer passed to Write.
	Data   []byte
	Offset uint64
	Result driver.Result
}

// Fault makes matching calls fail.
type Fault struct {
	Op Op
	// Path restricts the fault to calls on this path. Empty matches any path.
	Path   string
	Result driver.Result
	// Panic makes the call panic instead of returning Result.
	Panic bool
	// Times is how many calls fail. Zero means every matching call.
	Times int
}

// Violation is a call that overlapped another call on the same object.
type Violation struct {
	Op   Op
	Path string
	With Op
}

func (v Violation) String() string {
	return fmt.Sprintf("%s on %q overlapped %s", v.Op, v.Path, v.With)
}

type Option interface {
	apply(*Driver)
}

type optionDelay time.Duration

func (o optionDelay) apply(d *Driver) {
	d.delay = time.Duration(o)
}

// WithDelay makes every object call sleep for dur while it is in progress,
// widening the window in which overlapping calls are detected.
func WithDelay(dur time.Duration) Option {
	return optionDelay(dur)
}

type optionClock [1]clock.WallClock

func (o optionClock) apply(d *Driver) {
	d.clock = o[0]
}

// WithWallClock sets the clock stamping recorded calls.
func WithWallClock(c clock.WallClock) Option {
	return optionClock{c}
}

var _ driver.Driver = (*Driver)(nil)

type Driver struct {
	inner driver.Driver
	delay time.Duration
	clock clock.WallClock

	mu         sync.Mutex
	history    []Call
	faults     []*Fault
	inflight   map[*object]*inflightCall
	violations []Violation
}

func New(inner driver.Driver, opts ...Option) *Driver {
	d := &Driver{
		inner:    inner,
		clock:    clock.RealWallClock(),
		inflight: make(map[*object]*inflightCall),
	}
	for _, o := range opts {
		o.apply(d)
	}
	return d
}

// Inject adds a fault. Faults are matched in the order added.
func (d *Driver) Inject(f Fault) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = append(d.faults, &f)
}

// ClearFaults removes all faults.
func (d *Driver) ClearFaults() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = nil
}

// Calls returns the recorded calls in completion order.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.history)
}

// Count returns the number of recorded calls of op.
func (d *Driver) Count(op Op) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int
	for _, c := range d.history {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Total returns the number of recorded calls.
func (d *Driver) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}

// Violations returns detected overlapping calls.
func (d *Driver) Violations() []Violation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.violations)
}

// Reset clears history and violations. Faults are kept.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = nil
	d.violations = nil
}

func (d *Driver) record(c Call) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c.Timestamp = d.clock.Now()
	d.history = append(d.history, c)
}

// fault returns the first fault matching op and path, consuming one of its Times.
func (d *Driver) fault(op Op, path string) *Fault {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, f := range d.faults {
		if f.Op != op || (f.Path != "" && f.Path != path) {
			continue
		}
		if f.Times > 0 {
			f.Times--
			if f.Times == 0 {
				d.faults = slices.Delete(d.faults, i, i+1)
			}
		}
		return f
	}
	return nil
}

// inject applies a matching fault. It panics or reports the fault's result.
func (d *Driver) inject(op Op, path string) (driver.Result, bool) {
	f := d.fault(op, path)
	if f == nil {
		return driver.OK, false
	}
	if f.Panic {
		panic(fmt.Sprintf("drivertest: injected panic in %s %q", op, path))
	}
	return f.Result, true
}

func pathOf(p driver.CPath) string {
	return string(bytes.Clone(p.Bytes()))
}
