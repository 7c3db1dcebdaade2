package aferodrv

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
)

type dirHandle struct {
	infos  []driver.FileInfo
	next   int
	busy   atomic.Bool
	closed atomic.Bool
}

// OpenDir lists the directory at once. Entries are returned sorted by name
// whatever order the backing filesystem uses.
func (d *Driver) OpenDir(p driver.CPath) (driver.Dir, driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, r := d.resolve(p)
	if r != driver.OK {
		return nil, r
	}
	fi, err := d.fsys.Stat(name)
	if err != nil || !fi.IsDir() {
		return nil, driver.NoPath
	}
	f, err := d.fsys.Open(name)
	if err != nil {
		return nil, resultOf(err)
	}
	defer f.Close()
	fis, err := f.Readdir(-1)
	if err != nil {
		return nil, resultOf(err)
	}
	infos := make([]driver.FileInfo, 0, len(fis))
	for _, fi := range fis {
		infos = append(infos, infoOf(fi))
	}
	slices.SortFunc(infos, func(a, b driver.FileInfo) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})
	return &dirHandle{infos: infos}, driver.OK
}

func enterDir(dp driver.Dir) (*dirHandle, driver.Result) {
	h, ok := dp.(*dirHandle)
	if !ok || h == nil || h.closed.Load() {
		return nil, driver.InvalidObject
	}
	if !h.busy.CompareAndSwap(false, true) {
		return nil, driver.IntErr
	}
	return h, driver.OK
}

func (d *Driver) ReadDir(dp driver.Dir) (driver.FileInfo, driver.Result) {
	h, r := enterDir(dp)
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
	h, r := enterDir(dp)
	if r != driver.OK {
		return r
	}
	defer h.busy.Store(false)
	h.closed.Store(true)
	h.infos = nil
	return driver.OK
}
