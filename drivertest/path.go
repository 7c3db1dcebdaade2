package drivertest

import "github.com/ngicks/go-fsys-helper/drvfs/driver"

func (d *Driver) pathCall(op Op, path driver.CPath, call func() driver.Result) driver.Result {
	name := pathOf(path)
	c := Call{Op: op, Path: name}
	defer func() { d.record(c) }()
	if r, ok := d.inject(op, name); ok {
		c.Result = r
		return r
	}
	c.Result = call()
	return c.Result
}

func (d *Driver) Stat(path driver.CPath) (info driver.FileInfo, r driver.Result) {
	r = d.pathCall(OpStat, path, func() driver.Result {
		info, r = d.inner.Stat(path)
		return r
	})
	return info, r
}

func (d *Driver) Chmod(path driver.CPath, attr, mask driver.Attr) driver.Result {
	return d.pathCall(OpChmod, path, func() driver.Result { return d.inner.Chmod(path, attr, mask) })
}

func (d *Driver) Mkdir(path driver.CPath) driver.Result {
	return d.pathCall(OpMkdir, path, func() driver.Result { return d.inner.Mkdir(path) })
}

func (d *Driver) Unlink(path driver.CPath) driver.Result {
	return d.pathCall(OpUnlink, path, func() driver.Result { return d.inner.Unlink(path) })
}

func (d *Driver) Rename(oldPath, newPath driver.CPath) driver.Result {
	return d.pathCall(OpRename, oldPath, func() driver.Result { return d.inner.Rename(oldPath, newPath) })
}

func (d *Driver) OpenDir(path driver.CPath) (dp driver.Dir, r driver.Result) {
	r = d.pathCall(OpOpenDir, path, func() driver.Result {
		dp, r = d.inner.OpenDir(path)
		return r
	})
	if r != driver.OK {
		return nil, r
	}
	return &dir{inner: dp, path: pathOf(path)}, r
}

type dir struct {
	inner driver.Dir
	path  string
}

func (d *Driver) ReadDir(dp driver.Dir) (info driver.FileInfo, r driver.Result) {
	h := dp.(*dir)
	c := Call{Op: OpReadDir, Path: h.path}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpReadDir, h.path); ok {
		c.Result = r
		return driver.FileInfo{}, r
	}
	info, c.Result = d.inner.ReadDir(h.inner)
	return info, c.Result
}

func (d *Driver) CloseDir(dp driver.Dir) driver.Result {
	h := dp.(*dir)
	c := Call{Op: OpCloseDir, Path: h.path}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpCloseDir, h.path); ok {
		c.Result = r
		return r
	}
	c.Result = d.inner.CloseDir(h.inner)
	return c.Result
}

func (d *Driver) Getcwd(buf []byte) driver.Result {
	c := Call{Op: OpGetcwd}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpGetcwd, ""); ok {
		c.Result = r
		return r
	}
	c.Result = d.inner.Getcwd(buf)
	return c.Result
}

func (d *Driver) Chdir(path driver.CPath) driver.Result {
	return d.pathCall(OpChdir, path, func() driver.Result { return d.inner.Chdir(path) })
}
