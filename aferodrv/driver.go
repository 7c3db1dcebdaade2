// Package aferodrv implements [driver.Driver] on top of an [afero.Fs].
//
// It lets drvfs run against a host directory (afero.NewBasePathFs over afero.NewOsFs)
// or a throwaway in-memory tree (afero.NewMemMapFs). The FatFs policies the backing
// filesystem does not enforce by itself are checked here: the sharing lock,
// the read-only attribute, missing parents on creation, and removal of non-empty
// or current directories.
package aferodrv

import (
	"path"
	"sync"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/pathcodec"
	"github.com/spf13/afero"
)

var _ driver.Driver = (*Driver)(nil)

type share struct {
	readers, writers int
}

type Driver struct {
	fsys afero.Fs

	mu     sync.Mutex
	cwd    string
	shares map[string]*share
}

func New(fsys afero.Fs) *Driver {
	return &Driver{
		fsys:   fsys,
		cwd:    "/",
		shares: make(map[string]*share),
	}
}

// Fs returns the backing filesystem.
func (d *Driver) Fs() afero.Fs {
	return d.fsys
}

// resolve turns p into a clean absolute path.
// A ".." at the root stays at the root.
func (d *Driver) resolve(p driver.CPath) (string, driver.Result) {
	if !p.Valid() {
		return "", driver.InvalidParameter
	}
	s := p.String()
	if s == "" {
		return "", driver.InvalidName
	}
	if !pathcodec.IsAbs(s) {
		s = d.cwd + "/" + s
	}
	var segs []string
	for c := range pathcodec.Components(s) {
		switch c.Kind {
		case pathcodec.Parent:
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		case pathcodec.Normal:
			if !driver.ValidName(c.Name) {
				return "", driver.InvalidName
			}
			segs = append(segs, c.Name)
		}
	}
	return pathcodec.Join(append([]string{"/"}, segs...)...), driver.OK
}

// resolveEntry is resolve that refuses the root, which has no entry of its own.
func (d *Driver) resolveEntry(p driver.CPath) (string, driver.Result) {
	name, r := d.resolve(p)
	if r != driver.OK {
		return "", r
	}
	if name == "/" {
		return "", driver.InvalidName
	}
	return name, driver.OK
}

// checkParent reports NoPath unless the parent of name is an existing directory.
func (d *Driver) checkParent(name string) driver.Result {
	fi, err := d.fsys.Stat(path.Dir(name))
	if err != nil || !fi.IsDir() {
		return driver.NoPath
	}
	return driver.OK
}

// lookup stats name. A missing entry is NoFile, a missing parent NoPath.
func (d *Driver) lookup(name string) (driver.FileInfo, driver.Result) {
	if r := d.checkParent(name); r != driver.OK {
		return driver.FileInfo{}, r
	}
	fi, err := d.fsys.Stat(name)
	if err != nil {
		return driver.FileInfo{}, resultOf(err)
	}
	return infoOf(fi), driver.OK
}

func (d *Driver) isOpen(name string) bool {
	_, ok := d.shares[name]
	return ok
}

// hasOpenUnder reports whether a file at or below dir is open.
func (d *Driver) hasOpenUnder(dir string) bool {
	for name := range d.shares {
		if within(dir, name) {
			return true
		}
	}
	return false
}

// within reports whether name is dir or lies below it.
func within(dir, name string) bool {
	if dir == "/" || dir == name {
		return true
	}
	return len(name) > len(dir) && name[:len(dir)] == dir && name[len(dir)] == '/'
}

func (d *Driver) Stat(p driver.CPath) (driver.FileInfo, driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, r := d.resolveEntry(p)
	if r != driver.OK {
		return driver.FileInfo{}, r
	}
	return d.lookup(name)
}

// Chmod applies the read-only bit of attr if mask selects it.
// Other attribute bits have no counterpart in the backing filesystem and are ignored.
func (d *Driver) Chmod(p driver.CPath, attr, mask driver.Attr) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, r := d.resolveEntry(p)
	if r != driver.OK {
		return r
	}
	fi, r := d.lookup(name)
	if r != driver.OK {
		return r
	}
	if mask&driver.AM_RDO == 0 {
		return driver.OK
	}
	return resultOf(d.fsys.Chmod(name, permOf(fi.Attrib.Dir(), attr.ReadOnly())))
}

func (d *Driver) Mkdir(p driver.CPath) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, r := d.resolveEntry(p)
	if r != driver.OK {
		return r
	}
	if r := d.checkParent(name); r != driver.OK {
		return r
	}
	if _, err := d.fsys.Stat(name); err == nil {
		return driver.Exist
	}
	return resultOf(d.fsys.Mkdir(name, permOf(true, false)))
}

func (d *Driver) Unlink(p driver.CPath) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, r := d.resolveEntry(p)
	if r != driver.OK {
		return r
	}
	fi, r := d.lookup(name)
	switch {
	case r != driver.OK:
		return r
	case d.isOpen(name):
		return driver.Locked
	case fi.Attrib.ReadOnly():
		return driver.Denied
	}
	if fi.Attrib.Dir() {
		if within(name, d.cwd) {
			return driver.Denied
		}
		empty, err := isEmptyDir(d.fsys, name)
		if err != nil {
			return resultOf(err)
		}
		if !empty {
			return driver.Denied
		}
	}
	return resultOf(d.fsys.Remove(name))
}

func (d *Driver) Rename(oldPath, newPath driver.CPath) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	oldName, r := d.resolveEntry(oldPath)
	if r != driver.OK {
		return r
	}
	newName, r := d.resolveEntry(newPath)
	if r != driver.OK {
		return r
	}
	fi, r := d.lookup(oldName)
	if r != driver.OK {
		return r
	}
	if r := d.checkParent(newName); r != driver.OK {
		return r
	}
	if _, err := d.fsys.Stat(newName); err == nil {
		return driver.Exist
	}
	if fi.Attrib.Dir() {
		if within(oldName, newName) {
			return driver.InvalidName
		}
		if d.hasOpenUnder(oldName) {
			return driver.Locked
		}
	} else if d.isOpen(oldName) {
		return driver.Locked
	}
	return resultOf(d.fsys.Rename(oldName, newName))
}

func (d *Driver) Getcwd(buf []byte) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(buf) < len(d.cwd)+1 {
		return driver.NotEnoughCore
	}
	copy(buf, d.cwd)
	buf[len(d.cwd)] = 0
	return driver.OK
}

func (d *Driver) Chdir(p driver.CPath) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, r := d.resolve(p)
	if r != driver.OK {
		return r
	}
	fi, err := d.fsys.Stat(name)
	if err != nil || !fi.IsDir() {
		return driver.NoPath
	}
	d.cwd = name
	return driver.OK
}
