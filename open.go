package drvfs

import "io/fs"

// OpenWith opens name as described by opts.
//
// opts is validated before the driver is called.
func (fsys *Fs) OpenWith(name string, opts OpenOptions) (*File, error) {
	mode, err := opts.Mode()
	if err != nil {
		return nil, wrapErr("open", name, err)
	}
	p, err := fsys.encode("open", name)
	if err != nil {
		return nil, err
	}
	fp, r := fsys.drv.Open(p, mode)
	if err := fsys.check("open", name, r); err != nil {
		return nil, err
	}
	f := &File{
		fsys: fsys,
		h:    newHandle(fsys.drv, fsys.logger, name, fp),
		path: p,
		name: name,
	}
	if opts.truncatesOnOpen(mode) {
		if err := f.Truncate(0); err != nil {
			_ = f.Close()
			return nil, wrapErr("open", name, err)
		}
	}
	return f, nil
}

// OpenFile opens name with os.OpenFile style flags. perm is ignored;
// the driver has no permission bits other than read-only.
func (fsys *Fs) OpenFile(name string, flag int, perm fs.FileMode) (*File, error) {
	return fsys.OpenWith(name, OptionsFromFlag(flag))
}

// Open opens name for reading.
func (fsys *Fs) Open(name string) (*File, error) {
	return fsys.OpenWith(name, ReadOnly())
}

// Create creates or truncates name and opens it for reading and writing.
func (fsys *Fs) Create(name string) (*File, error) {
	return fsys.OpenWith(name, CreateTruncate())
}

