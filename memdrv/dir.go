package memdrv

import (
	"sync/atomic"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
)

// dirHandle iterates over a snapshot taken at OpenDir.
type dirHandle struct {
	d     *Driver
	infos []driver.FileInfo

	busy   atomic.Bool
	next   int
	closed bool
}

func (d *Driver) enterDir(dp driver.Dir) (*dirHandle, driver.Result) {
	h, ok := dp.(*dirHandle)
	if !ok || h == nil || h.d != d {
		return nil, driver.InvalidObject
	}
	if !h.busy.CompareAndSwap(false, true) {
		return nil, driver.IntErr
	}
	if h.closed {
		h.busy.Store(false)
		return nil, driver.InvalidObject
	}
	return h, driver.OK
}

func (d *Driver) OpenDir(path driver.CPath) (driver.Dir, driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	segs, r := d.resolve(path)
	if r != driver.OK {
		return nil, r
	}
	dir, r := d.walk(segs)
	if r != driver.OK {
		return nil, r
	}
	return &dirHandle{d: d, infos: dir.snapshot()}, driver.OK
}

func (d *Driver) ReadDir(dp driver.Dir) (driver.FileInfo, driver.Result) {
	h, r := d.enterDir(dp)
	if r != driver.OK {
		return driver.FileInfo{}, r
	}
	defer h.busy.Store(false)
	if h.next >= len(h.infos) {
		return driver.FileInfo{}, driver.OK
	}
	info := h.infos[h.next]
	h.next++
	return info, driver.OK
}

func (d *Driver) CloseDir(dp driver.Dir) driver.Result {
	h, r := d.enterDir(dp)
	if r != driver.OK {
		return r
	}
	defer h.busy.Store(false)
	h.closed = true
	h.infos = nil
	return driver.OK
}
