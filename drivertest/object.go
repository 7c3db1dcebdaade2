package drivertest

import (
	"bytes"
	"time"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
)

var _ driver.Object = (*object)(nil)

// object wraps an inner object to remember its path and detect overlapping use.
type object struct {
	d     *Driver
	inner driver.Object
	path  string
}

func (o *object) Tell() uint64 {
	// Tell may run under a shared lock, so it is only checked against exclusive calls.
	o.d.mu.Lock()
	if in, ok := o.d.inflight[o]; ok {
		o.d.violations = append(o.d.violations, Violation{Op: OpTell, Path: o.path, With: in.op})
	}
	o.d.mu.Unlock()
	return o.inner.Tell()
}

type inflightCall struct {
	op Op
}

// enter marks o as used by op until the returned func is called.
func (d *Driver) enter(fp driver.Object, op Op) (*object, func()) {
	o := fp.(*object)
	in := &inflightCall{op: op}
	d.mu.Lock()
	if cur, ok := d.inflight[o]; ok {
		d.violations = append(d.violations, Violation{Op: op, Path: o.path, With: cur.op})
	} else {
		d.inflight[o] = in
	}
	d.mu.Unlock()
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	return o, func() {
		d.mu.Lock()
		if d.inflight[o] == in {
			delete(d.inflight, o)
		}
		d.mu.Unlock()
	}
}

func (d *Driver) Open(path driver.CPath, mode driver.Mode) (driver.Object, driver.Result) {
	name := pathOf(path)
	c := Call{Op: OpOpen, Path: name}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpOpen, name); ok {
		c.Result = r
		return nil, r
	}
	fp, r := d.inner.Open(path, mode)
	c.Result = r
	if r != driver.OK {
		return nil, r
	}
	return &object{d: d, inner: fp, path: name}, r
}

func (d *Driver) Close(fp driver.Object) driver.Result {
	o, leave := d.enter(fp, OpClose)
	defer leave()
	c := Call{Op: OpClose, Path: o.path}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpClose, o.path); ok {
		c.Result = r
		return r
	}
	c.Result = d.inner.Close(o.inner)
	return c.Result
}

func (d *Driver) Read(fp driver.Object, buf []byte) (int, driver.Result) {
	o, leave := d.enter(fp, OpRead)
	defer leave()
	c := Call{Op: OpRead, Path: o.path}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpRead, o.path); ok {
		c.Result = r
		return 0, r
	}
	n, r := d.inner.Read(o.inner, buf)
	c.Result = r
	return n, r
}

func (d *Driver) Write(fp driver.Object, buf []byte) (int, driver.Result) {
	o, leave := d.enter(fp, OpWrite)
	defer leave()
	c := Call{Op: OpWrite, Path: o.path, Data: bytes.Clone(buf), Offset: o.inner.Tell()}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpWrite, o.path); ok {
		c.Result = r
		return 0, r
	}
	n, r := d.inner.Write(o.inner, buf)
	c.Result = r
	return n, r
}

func (d *Driver) Lseek(fp driver.Object, ofs uint64) driver.Result {
	o, leave := d.enter(fp, OpLseek)
	defer leave()
	c := Call{Op: OpLseek, Path: o.path, Offset: ofs}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpLseek, o.path); ok {
		c.Result = r
		return r
	}
	c.Result = d.inner.Lseek(o.inner, ofs)
	return c.Result
}

func (d *Driver) Truncate(fp driver.Object) driver.Result {
	o, leave := d.enter(fp, OpTruncate)
	defer leave()
	c := Call{Op: OpTruncate, Path: o.path}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpTruncate, o.path); ok {
		c.Result = r
		return r
	}
	c.Result = d.inner.Truncate(o.inner)
	return c.Result
}

func (d *Driver) Sync(fp driver.Object) driver.Result {
	o, leave := d.enter(fp, OpSync)
	defer leave()
	c := Call{Op: OpSync, Path: o.path}
	defer func() { d.record(c) }()
	if r, ok := d.inject(OpSync, o.path); ok {
		c.Result = r
		return r
	}
	c.Result = d.inner.Sync(o.inner)
	return c.Result
}
