// Package testhelper prepares and inspects directory trees in tests.
//
// A tree is described by lines:
//
//	dir/            a directory
//	dir/ 0o555      a read-only directory
//	dir/file: foo   a file with content foo
//	file: 0o444 foo a read-only file
//	file: "a b\n"   a file with quoted content
package testhelper

import (
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

type LineKind string

const (
	LineKindMkdir     LineKind = "mkdir"
	LineKindWriteFile LineKind = "write_file"
)

type LineDirection struct {
	LineKind   LineKind
	Permission fs.FileMode
	Path       string
	Content    []byte
}

// ParseLine parses txt. It returns a zero LineDirection if txt is malformed.
func ParseLine(txt string) LineDirection {
	switch {
	case strings.Contains(txt, "/ ") || strings.HasSuffix(txt, "/"):
		var suf string
		if strings.Contains(txt, "/ ") {
			txt, suf, _ = strings.Cut(txt, "/ ")
		} else {
			txt = strings.TrimSuffix(txt, "/")
		}
		var perm uint64
		if suf != "" {
			var err error
			perm, err = strconv.ParseUint(suf, 0, 32)
			if err != nil {
				return LineDirection{}
			}
		}
		return LineDirection{LineKind: LineKindMkdir, Path: txt, Permission: fs.FileMode(perm)}
	case strings.Contains(txt, ": "):
		p, rest, _ := strings.Cut(txt, ": ")
		var perm uint64
		if first, remainder, ok := strings.Cut(rest, " "); ok {
			if parsed, err := strconv.ParseUint(first, 0, 32); err == nil {
				perm = parsed
				rest = remainder
			}
		}
		content := rest
		if strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, "`") {
			unquoted, err := strconv.Unquote(rest)
			if err != nil {
				return LineDirection{}
			}
			content = unquoted
		}
		return LineDirection{LineKind: LineKindWriteFile, Path: p, Content: []byte(content), Permission: fs.FileMode(perm)}
	}
	return LineDirection{}
}

// String formats l back into a line.
func (l LineDirection) String() string {
	switch l.LineKind {
	case LineKindMkdir:
		if l.Permission != 0 {
			return fmt.Sprintf("%s/ %#o", l.Path, l.Permission)
		}
		return l.Path + "/"
	case LineKindWriteFile:
		if l.Permission != 0 {
			return fmt.Sprintf("%s: %#o %s", l.Path, l.Permission, strconv.Quote(string(l.Content)))
		}
		return fmt.Sprintf("%s: %s", l.Path, strconv.Quote(string(l.Content)))
	}
	return ""
}

// PrepareFsys is the part of a filesystem ExecuteLines writes through.
type PrepareFsys interface {
	MkdirAll(name string, perm fs.FileMode) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error
}

// ExecuteLines creates every line under baseDir. Parents are created as needed.
// A permission is applied after the entry is written.
func ExecuteLines(fsys PrepareFsys, baseDir string, lines ...string) error {
	for _, txt := range lines {
		l := ParseLine(txt)
		if l.LineKind == "" {
			return fmt.Errorf("unknown line %q", txt)
		}
		if err := l.Execute(fsys, baseDir); err != nil {
			return err
		}
	}
	return nil
}

func (l LineDirection) Execute(fsys PrepareFsys, baseDir string) error {
	p := path.Join(baseDir, l.Path)
	switch l.LineKind {
	case LineKindMkdir:
		if err := fsys.MkdirAll(p, fs.ModePerm); err != nil {
			return err
		}
	case LineKindWriteFile:
		if err := fsys.MkdirAll(path.Dir(p), fs.ModePerm); err != nil {
			return err
		}
		if err := fsys.WriteFile(p, l.Content, 0o666); err != nil {
			return err
		}
	default:
		return nil
	}
	if l.Permission != 0 {
		return fsys.Chmod(p, l.Permission)
	}
	return nil
}
