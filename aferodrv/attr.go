package aferodrv

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"syscall"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/spf13/afero"
)

// infoOf converts fi into the attributes the driver reports.
// A missing owner write bit is the read-only attribute.
func infoOf(fi fs.FileInfo) driver.FileInfo {
	var attrib driver.Attr
	if fi.IsDir() {
		attrib |= driver.AM_DIR
	} else {
		attrib |= driver.AM_ARC
	}
	if fi.Mode().Perm()&0o200 == 0 {
		attrib |= driver.AM_RDO
	}
	var size uint64
	if !fi.IsDir() && fi.Size() > 0 {
		size = uint64(fi.Size())
	}
	mod := fi.ModTime()
	return driver.FileInfo{
		Size:   size,
		Date:   driver.PackDate(mod),
		Time:   driver.PackTime(mod),
		Attrib: attrib,
		Name:   []byte(path.Base(fi.Name())),
	}
}

// permOf is the permission written for the read-only attribute.
// Directories are 0o777 or 0o555, files 0o666 or 0o444.
func permOf(dir, readOnly bool) fs.FileMode {
	switch {
	case dir && !readOnly:
		return fs.ModePerm
	case dir && readOnly:
		return 0o555
	case !dir && !readOnly:
		return 0o666
	default:
		return 0o444
	}
}

// resultOf translates an error of the backing filesystem into a result code.
func resultOf(err error) driver.Result {
	switch {
	case err == nil:
		return driver.OK
	case errors.Is(err, fs.ErrNotExist):
		return driver.NoFile
	case errors.Is(err, fs.ErrExist):
		return driver.Exist
	case errors.Is(err, fs.ErrPermission):
		return driver.Denied
	case errors.Is(err, syscall.ENOTDIR):
		return driver.NoPath
	case errors.Is(err, syscall.ENOTEMPTY):
		return driver.Denied
	case errors.Is(err, syscall.EROFS):
		return driver.WriteProtected
	case errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		return driver.TooManyOpenFiles
	case errors.Is(err, syscall.ENAMETOOLONG):
		return driver.InvalidName
	case errors.Is(err, fs.ErrInvalid), errors.Is(err, syscall.EINVAL):
		return driver.InvalidParameter
	case errors.Is(err, fs.ErrClosed):
		return driver.InvalidObject
	default:
		return driver.DiskErr
	}
}

func isEmptyDir(fsys afero.Fs, name string) (bool, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	names, err := f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(names) == 0, nil
}
