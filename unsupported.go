package drvfs

import (
	"os"

	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
)

// ReadLink always fails. The driver has no symbolic links.
func (fsys *Fs) ReadLink(name string) (string, error) {
	return "", wrapErr("readlink", name, fserr.NotSupported())
}

// Symlink always fails. The driver has no symbolic links.
func (fsys *Fs) Symlink(oldname, newname string) error {
	return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: fserr.NotSupported()}
}

// Link always fails. The driver has no hard links.
func (fsys *Fs) Link(oldname, newname string) error {
	return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: fserr.NotSupported()}
}

// Pipe always fails. Pipes are not available on this platform.
func Pipe() (r, w *File, err error) {
	return nil, nil, fserr.NotSupported()
}
