// Package memdrv is an in-memory filesystem driver with FatFs semantics.
//
// It backs tests and the CLI's memory backend. Like the real driver, an [driver.Object]
// must not be used from two goroutines at once; memdrv detects such use and fails
// the overlapping call with [driver.IntErr] instead of corrupting its state.
// It also enforces the FatFs sharing lock: a file open for writing cannot be opened again,
// and an open file cannot be removed or renamed.
package memdrv

import (
	"strings"
	"sync"

	"github.com/ngicks/go-fsys-helper/drvfs/clock"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/pathcodec"
)

var _ driver.Driver = (*Driver)(nil)

type Driver struct {
	clock    clock.WallClock
	maxOpen  int
	capacity int64

	mu             sync.Mutex
	root           *node
	cwd            []string
	nopen          int
	used           int64
	writeProtected bool
}

type Option interface {
	apply(*Driver)
}

type optionClock [1]clock.WallClock

func (o optionClock) apply(d *Driver) {
	d.clock = o[0]
}

// WithWallClock sets the clock used to stamp modification times.
func WithWallClock(c clock.WallClock) Option {
	return optionClock{c}
}

type optionMaxOpen int

func (o optionMaxOpen) apply(d *Driver) {
	d.maxOpen = int(o)
}

// WithMaxOpenFiles limits the number of simultaneously open files.
// Opening more fails with [driver.TooManyOpenFiles]. Zero means no limit.
func WithMaxOpenFiles(n int) Option {
	return optionMaxOpen(n)
}

const (
	// MaxFileSize is the largest file FAT can hold.
	MaxFileSize = 0xFFFFFFFF
	// DefaultCapacity is the volume size of a Driver made without [WithCapacity].
	DefaultCapacity = 64 << 20
)

type optionCapacity int64

func (o optionCapacity) apply(d *Driver) {
	d.capacity = int64(o)
}

// WithCapacity sets the total size of file contents, [DefaultCapacity] if not given.
// A Write that does not fit is cut short and a Lseek that would extend a file
// past it stops at the last byte that fits, as on a full volume.
// Zero or less means no limit other than [MaxFileSize] per file.
func WithCapacity(bytes int64) Option {
	return optionCapacity(bytes)
}

func New(opts ...Option) *Driver {
	d := &Driver{clock: clock.RealWallClock(), capacity: DefaultCapacity}
	for _, o := range opts {
		o.apply(d)
	}
	d.root = newDir("", d.clock.Now())
	return d
}

// SetWriteProtected toggles write protection of the volume.
// While protected every modifying call fails with [driver.WriteProtected].
func (d *Driver) SetWriteProtected(protected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeProtected = protected
}

// resolve turns p into components from the root.
// A ".." at the root stays at the root.
func (d *Driver) resolve(p driver.CPath) ([]string, driver.Result) {
	if !p.Valid() {
		return nil, driver.InvalidParameter
	}
	s := p.String()
	if s == "" {
		return nil, driver.InvalidName
	}
	var segs []string
	if !pathcodec.IsAbs(s) {
		segs = append(segs, d.cwd...)
	}
	for c := range pathcodec.Components(s) {
		switch c.Kind {
		case pathcodec.Parent:
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		case pathcodec.Normal:
			if !driver.ValidName(c.Name) {
				return nil, driver.InvalidName
			}
			segs = append(segs, c.Name)
		}
	}
	return segs, driver.OK
}

// walk returns the directory at segs.
func (d *Driver) walk(segs []string) (*node, driver.Result) {
	dir := d.root
	for _, name := range segs {
		next, ok := dir.lookup(name)
		if !ok || !next.isDir() {
			return nil, driver.NoPath
		}
		dir = next
	}
	return dir, driver.OK
}

// locate resolves p to its parent directory and base name.
// It fails with InvalidName for the root itself.
func (d *Driver) locate(p driver.CPath) (parent *node, name string, r driver.Result) {
	segs, r := d.resolve(p)
	if r != driver.OK {
		return nil, "", r
	}
	if len(segs) == 0 {
		return nil, "", driver.InvalidName
	}
	parent, r = d.walk(segs[:len(segs)-1])
	if r != driver.OK {
		return nil, "", r
	}
	return parent, segs[len(segs)-1], driver.OK
}

func (d *Driver) Stat(path driver.CPath) (driver.FileInfo, driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	parent, name, r := d.locate(path)
	if r != driver.OK {
		return driver.FileInfo{}, r
	}
	n, ok := parent.lookup(name)
	if !ok {
		return driver.FileInfo{}, driver.NoFile
	}
	return n.info(), driver.OK
}

func (d *Driver) Chmod(path driver.CPath, attr, mask driver.Attr) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeProtected {
		return driver.WriteProtected
	}
	parent, name, r := d.locate(path)
	if r != driver.OK {
		return r
	}
	n, ok := parent.lookup(name)
	if !ok {
		return driver.NoFile
	}
	mask &= driver.AM_RDO | driver.AM_HID | driver.AM_SYS | driver.AM_ARC
	n.attrib = n.attrib&^mask | attr&mask
	return driver.OK
}

func (d *Driver) Mkdir(path driver.CPath) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeProtected {
		return driver.WriteProtected
	}
	parent, name, r := d.locate(path)
	if r != driver.OK {
		return r
	}
	if _, ok := parent.lookup(name); ok {
		return driver.Exist
	}
	now := d.clock.Now()
	parent.add(newDir(name, now))
	parent.touch(now)
	return driver.OK
}

func (d *Driver) Unlink(path driver.CPath) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeProtected {
		return driver.WriteProtected
	}
	parent, name, r := d.locate(path)
	if r != driver.OK {
		return r
	}
	n, ok := parent.lookup(name)
	switch {
	case !ok:
		return driver.NoFile
	case n.open():
		return driver.Locked
	case n.attrib.ReadOnly():
		return driver.Denied
	case n.isDir() && (n.len() > 0 || d.inCwd(n)):
		return driver.Denied
	}
	parent.remove(name)
	parent.touch(d.clock.Now())
	d.used -= int64(len(n.content))
	return driver.OK
}

func (d *Driver) inCwd(n *node) bool {
	dir := d.root
	for _, name := range d.cwd {
		dir, _ = dir.lookup(name)
		if dir == n {
			return true
		}
	}
	return false
}

func (d *Driver) Rename(oldPath, newPath driver.CPath) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeProtected {
		return driver.WriteProtected
	}
	oldParent, oldName, r := d.locate(oldPath)
	if r != driver.OK {
		return r
	}
	n, ok := oldParent.lookup(oldName)
	if !ok {
		return driver.NoFile
	}
	newParent, newName, r := d.locate(newPath)
	if r != driver.OK {
		return r
	}
	switch _, exists := newParent.lookup(newName); {
	case exists:
		return driver.Exist
	case n.open():
		return driver.Locked
	case n.contains(newParent):
		return driver.InvalidName
	}
	oldParent.remove(oldName)
	n.name = newName
	newParent.add(n)
	now := d.clock.Now()
	oldParent.touch(now)
	newParent.touch(now)
	return driver.OK
}

func (d *Driver) Getcwd(buf []byte) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	cwd := "/" + strings.Join(d.cwd, "/")
	if len(buf) < len(cwd)+1 {
		return driver.NotEnoughCore
	}
	copy(buf, cwd)
	buf[len(cwd)] = 0
	return driver.OK
}

func (d *Driver) Chdir(path driver.CPath) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	segs, r := d.resolve(path)
	if r != driver.OK {
		return r
	}
	if _, r := d.walk(segs); r != driver.OK {
		return r
	}
	d.cwd = segs
	return driver.OK
}
