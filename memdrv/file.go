package memdrv

import (
	"sync/atomic"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
)

var _ driver.Object = (*file)(nil)

type file struct {
	d    *Driver
	n    *node
	mode driver.Mode
	ptr  atomic.Uint64

	// busy is set while a call is using the object.
	busy atomic.Bool
	// closed is only accessed while busy is held.
	closed bool
}

func (f *file) Tell() uint64 {
	return f.ptr.Load()
}

// enter claims fp for one call. An overlapping call on the same object fails with IntErr.
func (d *Driver) enter(fp driver.Object) (*file, driver.Result) {
	f, ok := fp.(*file)
	if !ok || f == nil || f.d != d {
		return nil, driver.InvalidObject
	}
	if !f.busy.CompareAndSwap(false, true) {
		return nil, driver.IntErr
	}
	if f.closed {
		f.busy.Store(false)
		return nil, driver.InvalidObject
	}
	return f, driver.OK
}

func (f *file) leave() {
	f.busy.Store(false)
}

func (d *Driver) Open(path driver.CPath, mode driver.Mode) (driver.Object, driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	parent, name, r := d.locate(path)
	if r != driver.OK {
		return nil, r
	}
	creation := mode.Creation()
	if d.writeProtected && (mode.Writable() || creation != driver.FA_OPEN_EXISTING) {
		return nil, driver.WriteProtected
	}
	if d.maxOpen > 0 && d.nopen >= d.maxOpen {
		return nil, driver.TooManyOpenFiles
	}

	n, exists := parent.lookup(name)
	switch {
	case !exists && creation == driver.FA_OPEN_EXISTING:
		return nil, driver.NoFile
	case !exists:
		now := d.clock.Now()
		n = newFile(name, now)
		parent.add(n)
		parent.touch(now)
	case creation == driver.FA_CREATE_NEW:
		return nil, driver.Exist
	case creation != driver.FA_OPEN_EXISTING && n.attrib&(driver.AM_RDO|driver.AM_DIR) != 0:
		return nil, driver.Denied
	case n.isDir():
		return nil, driver.NoFile
	case mode.Writable() && n.attrib.ReadOnly():
		return nil, driver.Denied
	}

	if n.writers > 0 || (mode.Writable() && n.readers > 0) {
		return nil, driver.Locked
	}
	if exists && creation == driver.FA_CREATE_ALWAYS {
		d.used -= int64(len(n.content))
		n.content = nil
		n.touch(d.clock.Now())
	}

	f := &file{d: d, n: n, mode: mode}
	if mode.Writable() {
		n.writers++
	} else {
		n.readers++
	}
	d.nopen++
	if mode.SeekEnd() {
		f.ptr.Store(uint64(len(n.content)))
	}
	return f, driver.OK
}

func (d *Driver) Close(fp driver.Object) driver.Result {
	f, r := d.enter(fp)
	if r != driver.OK {
		return r
	}
	defer f.leave()

	d.mu.Lock()
	defer d.mu.Unlock()
	if f.mode.Writable() {
		f.n.writers--
	} else {
		f.n.readers--
	}
	d.nopen--
	f.closed = true
	return driver.OK
}

func (d *Driver) Read(fp driver.Object, buf []byte) (int, driver.Result) {
	f, r := d.enter(fp)
	if r != driver.OK {
		return 0, r
	}
	defer f.leave()
	if !f.mode.Readable() {
		return 0, driver.Denied
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	ptr := f.ptr.Load()
	if ptr >= uint64(len(f.n.content)) {
		return 0, driver.OK
	}
	n := copy(buf, f.n.content[ptr:])
	f.ptr.Store(ptr + uint64(n))
	return n, driver.OK
}

func (d *Driver) Write(fp driver.Object, buf []byte) (int, driver.Result) {
	f, r := d.enter(fp)
	if r != driver.OK {
		return 0, r
	}
	defer f.leave()
	if !f.mode.Writable() {
		return 0, driver.Denied
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeProtected {
		return 0, driver.WriteProtected
	}
	if len(buf) == 0 {
		return 0, driver.OK
	}
	ptr := f.ptr.Load()
	end := d.grow(f.n, ptr+uint64(len(buf)))
	if end <= ptr {
		return 0, driver.OK
	}
	n := copy(f.n.content[ptr:end], buf)
	f.ptr.Store(ptr + uint64(n))
	f.n.touch(d.clock.Now())
	return n, driver.OK
}

// grow extends the content of n toward size with zeros, as far as the capacity
// and [MaxFileSize] allow. It returns the resulting size.
func (d *Driver) grow(n *node, size uint64) uint64 {
	cur := uint64(len(n.content))
	growth := d.growth(cur, size)
	if growth == 0 {
		return cur
	}
	n.content = append(n.content, make([]byte, growth)...)
	d.used += int64(growth)
	return cur + growth
}

// growth is the number of bytes a file of size cur may grow toward size.
func (d *Driver) growth(cur, size uint64) uint64 {
	size = min(size, MaxFileSize)
	if size <= cur {
		return 0
	}
	growth := size - cur
	if d.capacity > 0 {
		growth = min(growth, uint64(max(d.capacity-d.used, 0)))
	}
	return growth
}

// Lseek moves the pointer. Beyond the end, a writable file is extended with zeros
// as far as the volume allows and a read-only one clips the pointer to its size.
func (d *Driver) Lseek(fp driver.Object, ofs uint64) driver.Result {
	f, r := d.enter(fp)
	if r != driver.OK {
		return r
	}
	defer f.leave()

	d.mu.Lock()
	defer d.mu.Unlock()
	size := uint64(len(f.n.content))
	if ofs > size {
		if f.mode.Writable() && !d.writeProtected {
			ofs = d.grow(f.n, ofs)
		} else {
			ofs = size
		}
	}
	f.ptr.Store(ofs)
	return driver.OK
}

func (d *Driver) Truncate(fp driver.Object) driver.Result {
	f, r := d.enter(fp)
	if r != driver.OK {
		return r
	}
	defer f.leave()
	if !f.mode.Writable() {
		return driver.Denied
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeProtected {
		return driver.WriteProtected
	}
	ptr := f.ptr.Load()
	if ptr < uint64(len(f.n.content)) {
		d.used -= int64(uint64(len(f.n.content)) - ptr)
		f.n.content = f.n.content[:ptr:ptr]
		f.n.touch(d.clock.Now())
	}
	return driver.OK
}

func (d *Driver) Sync(fp driver.Object) driver.Result {
	f, r := d.enter(fp)
	if r != driver.OK {
		return r
	}
	// always synced.
	f.leave()
	return driver.OK
}
