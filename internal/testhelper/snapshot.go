package testhelper

import (
	"io/fs"
)

// Snapshot walks fsys and describes it in lines, in lexical order.
// Only read-only entries carry a permission.
func Snapshot(fsys fs.FS) ([]string, error) {
	var lines []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		var perm fs.FileMode
		if info.Mode().Perm()&0o200 == 0 {
			perm = info.Mode().Perm()
		}
		if d.IsDir() {
			lines = append(lines, LineDirection{LineKind: LineKindMkdir, Path: p, Permission: perm}.String())
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		lines = append(lines, LineDirection{LineKind: LineKindWriteFile, Path: p, Content: content, Permission: perm}.String())
		return nil
	})
	return lines, err
}
