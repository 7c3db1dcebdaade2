// Package drvfs exposes a non-reentrant, result-code based filesystem driver
// as a safe, concurrent, io/fs flavored file API.
//
// An open file is shared by every [File] duplicated from it and guarded by a single read-write lock,
// so calls on one underlying driver object are never concurrent.
// Calls on different objects are not serialized by this package.
// Driver result codes are translated into [fserr.Error] values wrapped in [*fs.PathError].
package drvfs

import (
	"io"
	"io/fs"
	"log/slog"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
	"github.com/ngicks/go-fsys-helper/drvfs/pathcodec"
)

// Fs is the entry point to a driver.
type Fs struct {
	drv    driver.Driver
	logger *slog.Logger
}

type FsOption interface {
	apply(*Fs)
}

type fsOptionLogger [1]*slog.Logger

func (o fsOptionLogger) apply(fsys *Fs) {
	fsys.logger = o[0]
}

// WithLogger sets the logger. Without it Fs logs nothing.
func WithLogger(logger *slog.Logger) FsOption {
	return fsOptionLogger{logger}
}

func New(drv driver.Driver, opts ...FsOption) *Fs {
	fsys := &Fs{drv: drv}
	for _, o := range opts {
		o.apply(fsys)
	}
	if fsys.logger == nil {
		fsys.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return fsys
}

// Driver returns the underlying driver.
func (fsys *Fs) Driver() driver.Driver {
	return fsys.drv
}

// wrapErr wraps err into [*fs.PathError].
// If err is already a PathError, its zero fields are filled by op and path.
func wrapErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if err == io.EOF {
		// don't wrap the sentinel value.
		return err
	}
	if pErr, ok := err.(*fs.PathError); ok {
		if pErr.Op == "" {
			pErr.Op = op
		}
		if pErr.Path == "" {
			pErr.Path = path
		}
		return pErr
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// check translates a driver result. It returns nil for [driver.OK].
func (fsys *Fs) check(op, path string, r driver.Result) error {
	if r == driver.OK {
		return nil
	}
	fsys.logger.Debug(
		"driver call failed",
		slog.String("op", op),
		slog.String("path", path),
		slog.Int("code", int(r)),
		slog.String("result", r.String()),
	)
	return wrapErr(op, path, fserr.FromResult(r))
}

func (fsys *Fs) encode(op, name string) (driver.CPath, error) {
	p, err := pathcodec.Encode(name)
	if err != nil {
		return nil, wrapErr(op, name, err)
	}
	return p, nil
}
