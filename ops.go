package drvfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/ngicks/go-fsys-helper/drvfs/attr"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
	"github.com/ngicks/go-fsys-helper/drvfs/internal/bufpool"
	"github.com/ngicks/go-fsys-helper/drvfs/internal/paths"
	"github.com/ngicks/go-fsys-helper/drvfs/pathcodec"
)

// Metadata returns the attributes of name.
func (fsys *Fs) Metadata(name string) (attr.Attributes, error) {
	return fsys.metadata("stat", name)
}

func (fsys *Fs) metadata(op, name string) (attr.Attributes, error) {
	p, err := fsys.encode(op, name)
	if err != nil {
		return attr.Attributes{}, err
	}
	info, r := fsys.drv.Stat(p)
	if err := fsys.check(op, name, r); err != nil {
		return attr.Attributes{}, err
	}
	return attr.FromInfo(info), nil
}

func (fsys *Fs) Stat(name string) (fs.FileInfo, error) {
	a, err := fsys.Metadata(name)
	if err != nil {
		return nil, err
	}
	return a.FileInfo(name), nil
}

// Lstat is Stat. The driver has no symbolic links.
func (fsys *Fs) Lstat(name string) (fs.FileInfo, error) {
	return fsys.Stat(name)
}

// Mkdir creates a directory. perm is ignored.
func (fsys *Fs) Mkdir(name string, perm fs.FileMode) error {
	p, err := fsys.encode("mkdir", name)
	if err != nil {
		return err
	}
	return fsys.check("mkdir", name, fsys.drv.Mkdir(p))
}

// MkdirAll creates name and any missing parents. perm is ignored.
// It succeeds if name is already a directory.
//
// The deepest existing ancestor is found by probing from name upward,
// then only the missing directories below it are created.
func (fsys *Fs) MkdirAll(name string, perm fs.FileMode) error {
	var existing string
	for p := range paths.FromTail(name) {
		if p == "/" || p == "." {
			break
		}
		a, err := fsys.metadata("mkdir", p)
		if err == nil {
			if !a.FileType().IsDir() {
				return &fs.PathError{Op: "mkdir", Path: p, Err: syscall.ENOTDIR}
			}
			existing = p
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	for p := range paths.FromHead(name) {
		// prefixes of the cleaned name no longer than existing are existing or its parents.
		if p == "/" || p == "." || len(p) <= len(existing) {
			continue
		}
		if err := fsys.Mkdir(p, perm); err != nil {
			// lost a race with another creator.
			if a, statErr := fsys.metadata("mkdir", p); statErr == nil && a.FileType().IsDir() {
				continue
			}
			return err
		}
	}
	return nil
}

func (fsys *Fs) Rename(oldname, newname string) error {
	oldp, err := pathcodec.Encode(oldname)
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	newp, err := pathcodec.Encode(newname)
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	if err := fsys.check("rename", oldname, fsys.drv.Rename(oldp, newp)); err != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: errors.Unwrap(err)}
	}
	return nil
}

// Chmod sets the read-only attribute from the owner write bit of mode.
func (fsys *Fs) Chmod(name string, mode fs.FileMode) error {
	return fsys.SetPermissions(name, attr.PermissionsFromMode(mode))
}

// SetPermissions changes the read-only attribute of name.
func (fsys *Fs) SetPermissions(name string, perm attr.Permissions) error {
	p, err := fsys.encode("chmod", name)
	if err != nil {
		return err
	}
	return fsys.check("chmod", name, fsys.drv.Chmod(p, perm.Attr(), driver.AM_RDO))
}

const initialCwdBuf = 512

// Getwd returns the driver's current directory.
// The buffer passed to the driver is doubled until the path fits.
func (fsys *Fs) Getwd() (string, error) {
	buf := make([]byte, initialCwdBuf)
	for {
		r := fsys.drv.Getcwd(buf)
		switch r {
		case driver.OK:
			return pathcodec.DecodeBytes(buf), nil
		case driver.NotEnoughCore:
			buf = make([]byte, 2*len(buf))
		default:
			return "", fsys.check("getwd", "", r)
		}
	}
}

func (fsys *Fs) Chdir(name string) error {
	p, err := fsys.encode("chdir", name)
	if err != nil {
		return err
	}
	return fsys.check("chdir", name, fsys.drv.Chdir(p))
}

// Canonicalize resolves name lexically. Only a leading "." consults the driver, for the current directory.
// A ".." that would climb above the resolved prefix is an error.
func (fsys *Fs) Canonicalize(name string) (string, error) {
	s, err := pathcodec.Canonicalize(name, fsys.Getwd)
	if err != nil {
		return "", wrapErr("canonicalize", name, err)
	}
	return s, nil
}

// Copy copies the content of from into to, which is created or truncated.
// It returns the number of bytes copied.
func (fsys *Fs) Copy(from, to string) (n int64, err error) {
	src, err := fsys.Open(from)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, src.Close())
	}()

	dst, err := fsys.OpenWith(to, OpenOptions{Write: true, Create: true, Truncate: true})
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, dst.Close())
	}()

	buf := bufpool.GetBytes()
	defer bufpool.PutBytes(buf)
	return io.CopyBuffer(dst, src, *buf)
}

// ReadFile reads the whole content of name.
func (fsys *Fs) ReadFile(name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFile writes data to name, creating or truncating it. perm is ignored.
func (fsys *Fs) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := fsys.OpenWith(name, OpenOptions{Write: true, Create: true, Truncate: true})
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return errors.Join(err, f.Close())
}

// Remove removes the file name. It fails for a directory.
func (fsys *Fs) Remove(name string) error {
	a, err := fsys.metadata("remove", name)
	if err != nil {
		return err
	}
	if !a.FileType().IsFile() {
		return wrapErr("remove", name, fserr.Wrap(fserr.Other, "not a file", syscall.EISDIR))
	}
	return fsys.unlink("remove", name)
}

// RemoveDir removes the empty directory name. It fails for a file.
func (fsys *Fs) RemoveDir(name string) error {
	a, err := fsys.metadata("rmdir", name)
	if err != nil {
		return err
	}
	if !a.FileType().IsDir() {
		return wrapErr("rmdir", name, fserr.Wrap(fserr.Other, "not a directory", syscall.ENOTDIR))
	}
	return fsys.unlink("rmdir", name)
}

func (fsys *Fs) unlink(op, name string) error {
	p, err := fsys.encode(op, name)
	if err != nil {
		return err
	}
	return fsys.check(op, name, fsys.drv.Unlink(p))
}
