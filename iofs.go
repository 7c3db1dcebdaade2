package drvfs

import (
	"errors"
	"io/fs"
	"slices"
	"strings"

	"github.com/ngicks/go-fsys-helper/drvfs/attr"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
	"github.com/ngicks/go-fsys-helper/drvfs/pathcodec"
)

var (
	_ fs.FS        = (*IoFs)(nil)
	_ fs.StatFS    = (*IoFs)(nil)
	_ fs.ReadDirFS = (*IoFs)(nil)
)

// IoFs is a read-only [fs.FS] view of a directory of the driver.
type IoFs struct {
	fsys *Fs
	root string
}

// IoFs returns an fs.FS rooted at the directory root.
func (fsys *Fs) IoFs(root string) *IoFs {
	return &IoFs{fsys: fsys, root: root}
}

func (f *IoFs) resolve(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return f.root, nil
	}
	return pathcodec.Join(f.root, name), nil
}

// metadata is like Fs.Metadata but also answers for the volume root,
// which the driver refuses to stat.
func (f *IoFs) metadata(op, name, p string) (attr.Attributes, error) {
	a, err := f.fsys.metadata(op, p)
	if err == nil {
		return a, nil
	}
	if code, ok := fserr.Code(err); ok && code == driver.InvalidName && strings.Trim(p, "/") == "" {
		return attr.FromInfo(driver.FileInfo{Attrib: driver.AM_DIR}), nil
	}
	return attr.Attributes{}, renamePathErr(err, name)
}

// renamePathErr reports err against the name used with the fs.FS rather than the driver path.
func renamePathErr(err error, name string) error {
	var pErr *fs.PathError
	if errors.As(err, &pErr) {
		pErr.Path = name
	}
	return err
}

func (f *IoFs) Open(name string) (fs.File, error) {
	p, err := f.resolve("open", name)
	if err != nil {
		return nil, err
	}
	a, err := f.metadata("open", name, p)
	if err != nil {
		return nil, err
	}
	if a.FileType().IsDir() {
		cur, err := f.fsys.ReadDir(p)
		if err != nil {
			return nil, renamePathErr(err, name)
		}
		return &ioDir{cur: cur, name: name, attr: a}, nil
	}
	file, err := f.fsys.Open(p)
	if err != nil {
		return nil, renamePathErr(err, name)
	}
	return &ioFile{f: file, name: name}, nil
}

func (f *IoFs) Stat(name string) (fs.FileInfo, error) {
	p, err := f.resolve("stat", name)
	if err != nil {
		return nil, err
	}
	a, err := f.metadata("stat", name, p)
	if err != nil {
		return nil, err
	}
	return a.FileInfo(name), nil
}

// ReadDir returns the entries of name sorted by file name.
func (f *IoFs) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := f.resolve("readdir", name)
	if err != nil {
		return nil, err
	}
	cur, err := f.fsys.ReadDir(p)
	if err != nil {
		return nil, renamePathErr(err, name)
	}
	ents, err := cur.ReadDir(-1)
	err = errors.Join(err, cur.Close())
	slices.SortFunc(ents, func(a, b fs.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })
	if err != nil {
		return ents, renamePathErr(err, name)
	}
	return ents, nil
}

var _ fs.File = (*ioFile)(nil)

// ioFile narrows File to fs.File.
type ioFile struct {
	f    *File
	name string
}

func (f *ioFile) Read(p []byte) (int, error) {
	n, err := f.f.Read(p)
	return n, renamePathErr(err, f.name)
}

func (f *ioFile) Stat() (fs.FileInfo, error) {
	a, err := f.f.Metadata()
	if err != nil {
		return nil, renamePathErr(err, f.name)
	}
	return a.FileInfo(f.name), nil
}

func (f *ioFile) Close() error {
	return renamePathErr(f.f.Close(), f.name)
}

var _ fs.ReadDirFile = (*ioDir)(nil)

type ioDir struct {
	cur  *DirCursor
	name string
	attr attr.Attributes
}

func (d *ioDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fserr.Wrap(fserr.Other, "is a directory", errIsDir)}
}

func (d *ioDir) Stat() (fs.FileInfo, error) {
	return d.attr.FileInfo(d.name), nil
}

func (d *ioDir) ReadDir(n int) ([]fs.DirEntry, error) {
	ents, err := d.cur.ReadDir(n)
	return ents, renamePathErr(err, d.name)
}

func (d *ioDir) Close() error {
	return renamePathErr(d.cur.Close(), d.name)
}

var errIsDir = errors.New("is a directory")
