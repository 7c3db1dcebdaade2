package drvfs

import (
	"errors"
	"io"
	"log/slog"
)

type removeFrame struct {
	path string
	cur  *DirCursor
}

// RemoveAll removes the directory name and everything under it.
//
// Unlike os.RemoveAll, name must be an existing directory.
// Entries are removed depth first and name itself last, so if any removal fails
// RemoveAll stops and name is left in place. Directory depth is bounded only by
// memory, not by the call stack.
func (fsys *Fs) RemoveAll(name string) (err error) {
	root, err := fsys.ReadDir(name)
	if err != nil {
		return wrapErr("removeall", name, err)
	}
	stack := []removeFrame{{path: name, cur: root}}
	defer func() {
		for _, f := range stack {
			err = errors.Join(err, f.cur.Close())
		}
	}()

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		ent, err := top.cur.Next()
		switch {
		case err == io.EOF:
			stack = stack[:len(stack)-1]
			if err := top.cur.Close(); err != nil {
				return err
			}
			if err := fsys.unlink("removeall", top.path); err != nil {
				return err
			}
			fsys.logger.Debug("removed", slog.String("path", top.path), slog.Bool("dir", true))
		case err != nil:
			return err
		case ent.IsDir():
			cur, err := fsys.ReadDir(ent.Path())
			if err != nil {
				return err
			}
			stack = append(stack, removeFrame{path: ent.Path(), cur: cur})
		default:
			if err := fsys.unlink("removeall", ent.Path()); err != nil {
				return err
			}
			fsys.logger.Debug("removed", slog.String("path", ent.Path()), slog.Bool("dir", false))
		}
	}
	return nil
}
