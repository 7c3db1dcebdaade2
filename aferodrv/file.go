package aferodrv

import (
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/spf13/afero"
)

var _ driver.Object = (*file)(nil)

type file struct {
	f    afero.File
	name string
	mode driver.Mode
	ptr  atomic.Uint64
	// busy is set while a call uses the object. Overlapping calls fail with IntErr.
	busy   atomic.Bool
	closed atomic.Bool
}

func (f *file) Tell() uint64 {
	return f.ptr.Load()
}

func enter(fp driver.Object) (*file, driver.Result) {
	f, ok := fp.(*file)
	if !ok || f == nil || f.closed.Load() {
		return nil, driver.InvalidObject
	}
	if !f.busy.CompareAndSwap(false, true) {
		return nil, driver.IntErr
	}
	return f, driver.OK
}

func (f *file) leave() {
	f.busy.Store(false)
}

// flagOf derives the flag for opening the backing file. Existence and permissions
// are checked before opening, so only access and truncation are carried over.
func flagOf(mode driver.Mode) int {
	flag := os.O_RDONLY
	if mode.Writable() || mode.Creation() != driver.FA_OPEN_EXISTING {
		flag = os.O_RDWR
	}
	switch mode.Creation() {
	case driver.FA_CREATE_NEW, driver.FA_OPEN_ALWAYS, driver.FA_OPEN_APPEND:
		flag |= os.O_CREATE
	case driver.FA_CREATE_ALWAYS:
		flag |= os.O_CREATE | os.O_TRUNC
	}
	return flag
}

func (d *Driver) Open(p driver.CPath, mode driver.Mode) (driver.Object, driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, r := d.resolveEntry(p)
	if r != driver.OK {
		return nil, r
	}
	creation := mode.Creation()
	fi, r := d.lookup(name)
	exists := r == driver.OK
	switch {
	case r != driver.OK && r != driver.NoFile:
		return nil, r
	case !exists && creation == driver.FA_OPEN_EXISTING:
		return nil, driver.NoFile
	case !exists:
	case creation == driver.FA_CREATE_NEW:
		return nil, driver.Exist
	case creation != driver.FA_OPEN_EXISTING && fi.Attrib&(driver.AM_RDO|driver.AM_DIR) != 0:
		return nil, driver.Denied
	case fi.Attrib.Dir():
		return nil, driver.NoFile
	case mode.Writable() && fi.Attrib.ReadOnly():
		return nil, driver.Denied
	}

	s := d.shares[name]
	if s != nil && (s.writers > 0 || (mode.Writable() && s.readers > 0)) {
		return nil, driver.Locked
	}

	perm := permOf(false, false)
	f, err := d.fsys.OpenFile(name, flagOf(mode), perm)
	if err != nil {
		return nil, resultOf(err)
	}
	fp := &file{f: f, name: name, mode: mode}
	if mode.SeekEnd() {
		st, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, resultOf(err)
		}
		fp.ptr.Store(uint64(st.Size()))
	}

	if s == nil {
		s = &share{}
		d.shares[name] = s
	}
	if mode.Writable() {
		s.writers++
	} else {
		s.readers++
	}
	return fp, driver.OK
}

func (d *Driver) Close(fp driver.Object) driver.Result {
	f, r := enter(fp)
	if r != driver.OK {
		return r
	}
	defer f.leave()
	f.closed.Store(true)

	d.mu.Lock()
	if s := d.shares[f.name]; s != nil {
		if f.mode.Writable() {
			s.writers--
		} else {
			s.readers--
		}
		if s.readers == 0 && s.writers == 0 {
			delete(d.shares, f.name)
		}
	}
	d.mu.Unlock()

	return resultOf(f.f.Close())
}

func (d *Driver) Read(fp driver.Object, buf []byte) (int, driver.Result) {
	f, r := enter(fp)
	if r != driver.OK {
		return 0, r
	}
	defer f.leave()
	if !f.mode.Readable() {
		return 0, driver.Denied
	}
	n, err := f.f.ReadAt(buf, int64(f.ptr.Load()))
	f.ptr.Add(uint64(n))
	if err != nil && !errors.Is(err, io.EOF) {
		return n, resultOf(err)
	}
	return n, driver.OK
}

func (d *Driver) Write(fp driver.Object, buf []byte) (int, driver.Result) {
	f, r := enter(fp)
	if r != driver.OK {
		return 0, r
	}
	defer f.leave()
	if !f.mode.Writable() {
		return 0, driver.Denied
	}
	n, err := f.f.WriteAt(buf, int64(f.ptr.Load()))
	f.ptr.Add(uint64(n))
	return n, resultOf(err)
}

// Lseek moves the pointer. Beyond the end, a writable file is extended with zeros
// and a read-only one clips the pointer to its size.
func (d *Driver) Lseek(fp driver.Object, ofs uint64) driver.Result {
	f, r := enter(fp)
	if r != driver.OK {
		return r
	}
	defer f.leave()
	st, err := f.f.Stat()
	if err != nil {
		return resultOf(err)
	}
	size := uint64(st.Size())
	if ofs > size {
		if !f.mode.Writable() {
			ofs = size
		} else if err := f.f.Truncate(int64(ofs)); err != nil {
			return resultOf(err)
		}
	}
	f.ptr.Store(ofs)
	return driver.OK
}

func (d *Driver) Truncate(fp driver.Object) driver.Result {
	f, r := enter(fp)
	if r != driver.OK {
		return r
	}
	defer f.leave()
	if !f.mode.Writable() {
		return driver.Denied
	}
	st, err := f.f.Stat()
	if err != nil {
		return resultOf(err)
	}
	if ptr := f.ptr.Load(); ptr < uint64(st.Size()) {
		return resultOf(f.f.Truncate(int64(ptr)))
	}
	return driver.OK
}

func (d *Driver) Sync(fp driver.Object) driver.Result {
	f, r := enter(fp)
	if r != driver.OK {
		return r
	}
	defer f.leave()
	return resultOf(f.f.Sync())
}
