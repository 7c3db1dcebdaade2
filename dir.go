package drvfs

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"iter"

	"github.com/ngicks/go-fsys-helper/drvfs/attr"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/pathcodec"
)

var _ fs.DirEntry = DirEntry{}

// DirEntry is an entry read from a directory.
// Its attributes are those the driver reported while listing.
type DirEntry struct {
	dir  string
	info driver.FileInfo
}

// Name returns the base name of the entry.
func (e DirEntry) Name() string {
	return string(e.info.Name)
}

// Path returns the entry joined to the directory it was read from.
func (e DirEntry) Path() string {
	return pathcodec.Join(e.dir, e.Name())
}

func (e DirEntry) IsDir() bool {
	return e.info.Attrib.Dir()
}

func (e DirEntry) Type() fs.FileMode {
	return attr.TypeOf(e.info.Attrib).Mode()
}

func (e DirEntry) Info() (fs.FileInfo, error) {
	return e.Metadata().FileInfo(e.Name()), nil
}

func (e DirEntry) Metadata() attr.Attributes {
	return attr.FromInfo(e.info)
}

func (e DirEntry) FileType() attr.FileType {
	return attr.TypeOf(e.info.Attrib)
}

// DirCursor reads a directory one entry at a time.
//
// The sequence is finite and cannot be restarted. A DirCursor is not safe for concurrent use.
type DirCursor struct {
	fsys   *Fs
	dp     driver.Dir
	name   string
	done   bool
	closed bool
}

// ReadDir opens the directory name for reading.
func (fsys *Fs) ReadDir(name string) (*DirCursor, error) {
	p, err := fsys.encode("readdir", name)
	if err != nil {
		return nil, err
	}
	dp, r := fsys.drv.OpenDir(p)
	if err := fsys.check("readdir", name, r); err != nil {
		return nil, err
	}
	return &DirCursor{fsys: fsys, dp: dp, name: name}, nil
}

// Name returns the directory name the cursor was opened with.
func (c *DirCursor) Name() string {
	return c.name
}

// Next returns the next entry, or io.EOF after the last one.
// A driver failure is returned as is; the cursor may be retried.
func (c *DirCursor) Next() (DirEntry, error) {
	if c.closed {
		return DirEntry{}, &fs.PathError{Op: "readdir", Path: c.name, Err: fs.ErrClosed}
	}
	if c.done {
		return DirEntry{}, io.EOF
	}
	info, r := c.fsys.drv.ReadDir(c.dp)
	if err := c.fsys.check("readdir", c.name, r); err != nil {
		return DirEntry{}, err
	}
	if info.End() {
		c.done = true
		return DirEntry{}, io.EOF
	}
	info.Name = bytes.Clone(info.Name)
	return DirEntry{dir: c.name, info: info}, nil
}

// All iterates over the remaining entries.
// Iteration stops after the first error, which is yielded with a zero DirEntry.
func (c *DirCursor) All() iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		for {
			ent, err := c.Next()
			if err == io.EOF {
				return
			}
			if !yield(ent, err) || err != nil {
				return
			}
		}
	}
}

// ReadDir reads up to n entries in the manner of [fs.ReadDirFile].
//
// If n > 0, at most n entries are returned and io.EOF is reported when there are none left.
// If n <= 0, all remaining entries are returned with a nil error at the end of the directory.
func (c *DirCursor) ReadDir(n int) ([]fs.DirEntry, error) {
	var out []fs.DirEntry
	for n <= 0 || len(out) < n {
		ent, err := c.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return out, err
		}
		out = append(out, ent)
	}
	if n > 0 && len(out) == 0 {
		return out, io.EOF
	}
	if out == nil {
		out = []fs.DirEntry{}
	}
	return out, nil
}

// Close releases the driver directory object.
func (c *DirCursor) Close() error {
	if c.closed {
		return &fs.PathError{Op: "close", Path: c.name, Err: fs.ErrClosed}
	}
	c.closed = true
	r := c.fsys.drv.CloseDir(c.dp)
	return c.fsys.check("close", c.name, r)
}
