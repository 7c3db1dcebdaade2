package drvfs

import (
	"io"
	"io/fs"
	"math"
	"sync/atomic"

	"github.com/ngicks/go-fsys-helper/drvfs/attr"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
)

var (
	_ fs.File       = (*File)(nil)
	_ io.ReadWriter = (*File)(nil)
	_ io.Seeker     = (*File)(nil)
)

// File is a logical handle to an open file.
//
// Files returned from [File.Duplicate] share the underlying driver object
// and its file pointer. Each File must be closed; the driver object is closed
// with the last one.
//
// File is safe for concurrent use. Calls through any of the Files sharing an object
// are applied one at a time.
type File struct {
	fsys   *Fs
	h      *handle
	path   driver.CPath
	name   string
	closed atomic.Bool
}

// Name returns the name passed to open.
func (f *File) Name() string {
	return f.name
}

func (f *File) errClosed(op string) error {
	if f.closed.Load() {
		return &fs.PathError{Op: op, Path: f.name, Err: fs.ErrClosed}
	}
	return nil
}

func (f *File) Read(p []byte) (int, error) {
	if err := f.errClosed("read"); err != nil {
		return 0, err
	}
	var (
		n int
		r driver.Result
	)
	err := f.h.exclusive("read", func(fp driver.Object) {
		n, r = f.fsys.drv.Read(fp, p)
	})
	if err != nil {
		return 0, wrapErr("read", f.name, err)
	}
	if err := f.fsys.check("read", f.name, r); err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *File) Write(p []byte) (int, error) {
	if err := f.errClosed("write"); err != nil {
		return 0, err
	}
	var (
		n int
		r driver.Result
	)
	err := f.h.exclusive("write", func(fp driver.Object) {
		n, r = f.fsys.drv.Write(fp, p)
	})
	if err != nil {
		return 0, wrapErr("write", f.name, err)
	}
	if err := f.fsys.check("write", f.name, r); err != nil {
		return n, err
	}
	if n < len(p) {
		return n, wrapErr("write", f.name, io.ErrShortWrite)
	}
	return n, nil
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Seek sets the offset for the next Read or Write.
//
// io.SeekEnd reads the size by path and io.SeekCurrent reads the file pointer,
// each as a separate step before the pointer is moved, so a concurrent writer
// changing the size in between is not accounted for.
// A target before byte 0 fails with an InvalidInput error wrapping [fserr.ErrInvalidSeek].
// The returned offset is the pointer reported by the driver after moving,
// which for a file opened without write access is clipped to its size.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if err := f.errClosed("seek"); err != nil {
		return 0, err
	}

	var base uint64
	switch whence {
	case io.SeekStart:
	case io.SeekEnd:
		a, err := f.Metadata()
		if err != nil {
			return 0, wrapErr("seek", f.name, err)
		}
		base = a.Size()
	case io.SeekCurrent:
		cur, err := f.h.tell()
		if err != nil {
			return 0, wrapErr("seek", f.name, err)
		}
		base = cur
	default:
		return 0, wrapErr("seek", f.name, fserr.New(fserr.InvalidInput, "invalid whence"))
	}

	target, ok := addOffset(base, offset)
	if !ok {
		return 0, wrapErr("seek", f.name, fserr.Wrap(fserr.InvalidInput, "", fserr.ErrInvalidSeek))
	}

	var (
		r   driver.Result
		pos uint64
	)
	err := f.h.exclusive("seek", func(fp driver.Object) {
		r = f.fsys.drv.Lseek(fp, target)
		pos = fp.Tell()
	})
	if err != nil {
		return 0, wrapErr("seek", f.name, err)
	}
	if err := f.fsys.check("seek", f.name, r); err != nil {
		return 0, err
	}
	return int64(min(pos, math.MaxInt64)), nil
}

// addOffset returns base+offset if it lies in [0, math.MaxInt64].
func addOffset(base uint64, offset int64) (uint64, bool) {
	if base > math.MaxInt64 {
		return 0, false
	}
	b := int64(base)
	if offset > 0 && b > math.MaxInt64-offset {
		return 0, false
	}
	t := b + offset
	if t < 0 {
		return 0, false
	}
	return uint64(t), true
}

// Stat returns the file's attributes, read by path.
func (f *File) Stat() (fs.FileInfo, error) {
	a, err := f.Metadata()
	if err != nil {
		return nil, err
	}
	return a.FileInfo(f.name), nil
}

// Metadata reads the attributes of the path the file was opened with.
func (f *File) Metadata() (attr.Attributes, error) {
	if err := f.errClosed("stat"); err != nil {
		return attr.Attributes{}, err
	}
	info, r := f.fsys.drv.Stat(f.path)
	if err := f.fsys.check("stat", f.name, r); err != nil {
		return attr.Attributes{}, err
	}
	return attr.FromInfo(info), nil
}

// Sync flushes cached data to the volume.
func (f *File) Sync() error {
	if err := f.errClosed("sync"); err != nil {
		return err
	}
	var r driver.Result
	err := f.h.exclusive("sync", func(fp driver.Object) {
		r = f.fsys.drv.Sync(fp)
	})
	if err != nil {
		return wrapErr("sync", f.name, err)
	}
	return f.fsys.check("sync", f.name, r)
}

// Datasync is Sync. The driver has a single flush primitive.
func (f *File) Datasync() error {
	return f.Sync()
}

// Truncate changes the size of the file to size.
//
// The driver truncates at the file pointer, so Truncate moves the pointer to size,
// truncates, and moves it back to the old position or to size, whichever is smaller.
// If the driver refuses to truncate, the pointer is moved back to where it was.
// All three steps run under one exclusive hold. Growing a file fills it with zeros.
func (f *File) Truncate(size int64) error {
	if err := f.errClosed("truncate"); err != nil {
		return err
	}
	if size < 0 {
		return wrapErr("truncate", f.name, fserr.New(fserr.InvalidInput, "negative size"))
	}
	var r driver.Result
	err := f.h.exclusive("truncate", func(fp driver.Object) {
		old := fp.Tell()
		if r = f.fsys.drv.Lseek(fp, uint64(size)); r != driver.OK {
			return
		}
		if r = f.fsys.drv.Truncate(fp); r != driver.OK {
			_ = f.fsys.drv.Lseek(fp, old)
			return
		}
		r = f.fsys.drv.Lseek(fp, min(old, uint64(size)))
	})
	if err != nil {
		return wrapErr("truncate", f.name, err)
	}
	return f.fsys.check("truncate", f.name, r)
}

// Chmod sets the read-only attribute from the owner write bit of mode.
func (f *File) Chmod(mode fs.FileMode) error {
	return f.SetPermissions(attr.PermissionsFromMode(mode))
}

// SetPermissions changes the read-only attribute of the path the file was opened with.
func (f *File) SetPermissions(perm attr.Permissions) error {
	if err := f.errClosed("chmod"); err != nil {
		return err
	}
	r := f.fsys.drv.Chmod(f.path, perm.Attr(), driver.AM_RDO)
	return f.fsys.check("chmod", f.name, r)
}

// Duplicate returns a new File sharing the driver object and file pointer with f.
// The driver is not called. Duplicate must not race with Close of f.
func (f *File) Duplicate() (*File, error) {
	if err := f.errClosed("duplicate"); err != nil {
		return nil, err
	}
	f.h.acquire()
	return &File{fsys: f.fsys, h: f.h, path: f.path.Clone(), name: f.name}, nil
}

// Close releases f. The driver object is closed when no duplicate remains open.
// Closing f twice returns an error wrapping [fs.ErrClosed].
func (f *File) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return &fs.PathError{Op: "close", Path: f.name, Err: fs.ErrClosed}
	}
	r, err := f.h.release()
	if err != nil {
		return wrapErr("close", f.name, err)
	}
	return f.fsys.check("close", f.name, r)
}
