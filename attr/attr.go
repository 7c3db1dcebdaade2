// Package attr lifts raw driver records into stable file attributes.
package attr

import (
	"io/fs"
	"path"
	"time"

	"github.com/ngicks/go-fsys-helper/drvfs/clock"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
)

// Permissions is the single permission bit the driver tracks.
type Permissions struct {
	readOnly bool
}

func ReadOnly() Permissions  { return Permissions{readOnly: true} }
func ReadWrite() Permissions { return Permissions{} }

func (p Permissions) ReadOnly() bool { return p.readOnly }

func (p *Permissions) SetReadOnly(readOnly bool) {
	p.readOnly = readOnly
}

// PermissionsFromMode treats mode as read-only unless it has the owner write bit.
func PermissionsFromMode(mode fs.FileMode) Permissions {
	return Permissions{readOnly: mode&0o200 == 0}
}

// Attr returns the attribute bits that encode p.
func (p Permissions) Attr() driver.Attr {
	if p.readOnly {
		return driver.AM_RDO
	}
	return 0
}

// FileType is the type tag of an entry. There are no symlinks on the driver.
type FileType struct {
	attrib driver.Attr
}

func TypeOf(attrib driver.Attr) FileType {
	return FileType{attrib: attrib}
}

func (t FileType) IsDir() bool     { return t.attrib.Dir() }
func (t FileType) IsFile() bool    { return !t.IsDir() }
func (t FileType) IsSymlink() bool { return false }

// Mode returns fs.ModeDir for directories and 0 otherwise.
func (t FileType) Mode() fs.FileMode {
	if t.IsDir() {
		return fs.ModeDir
	}
	return 0
}

// Attributes is an immutable snapshot of an entry's metadata.
type Attributes struct {
	size        uint64
	modified    clock.SystemTime
	permissions Permissions
	fileType    FileType
}

// FromInfo translates a raw driver record.
func FromInfo(info driver.FileInfo) Attributes {
	return Attributes{
		size:        info.Size,
		modified:    DecodeTimestamp(info.Date, info.Time),
		permissions: Permissions{readOnly: info.Attrib.ReadOnly()},
		fileType:    TypeOf(info.Attrib),
	}
}

func (a Attributes) Size() uint64             { return a.size }
func (a Attributes) Permissions() Permissions { return a.permissions }
func (a Attributes) FileType() FileType       { return a.fileType }
func (a Attributes) Modified() clock.SystemTime {
	return a.modified
}

// Accessed returns the modification time; the driver records only one timestamp.
func (a Attributes) Accessed() clock.SystemTime { return a.modified }

// Created returns the modification time; the driver records only one timestamp.
func (a Attributes) Created() clock.SystemTime { return a.modified }

// Mode renders a as an fs.FileMode.
// Directories are 0o777 or 0o555, files 0o666 or 0o444, depending on the read-only bit.
func (a Attributes) Mode() fs.FileMode {
	writable := !a.permissions.readOnly
	switch {
	case a.fileType.IsDir() && writable:
		return fs.ModeDir | fs.ModePerm
	case a.fileType.IsDir() && !writable:
		return fs.ModeDir | 0o555
	case !a.fileType.IsDir() && writable:
		return 0o666
	default:
		return 0o444
	}
}

// FileInfo returns an fs.FileInfo view of a under name.
func (a Attributes) FileInfo(name string) fs.FileInfo {
	return stat{attr: a, name: name}
}

var _ fs.FileInfo = stat{}

type stat struct {
	attr Attributes
	name string
}

// IsDir implements fs.FileInfo.
func (s stat) IsDir() bool {
	return s.attr.fileType.IsDir()
}

// ModTime implements fs.FileInfo.
func (s stat) ModTime() time.Time {
	return s.attr.modified.Time()
}

// Mode implements fs.FileInfo.
func (s stat) Mode() fs.FileMode {
	return s.attr.Mode()
}

// Name implements fs.FileInfo.
func (s stat) Name() string {
	return path.Base(s.name)
}

// Size implements fs.FileInfo.
func (s stat) Size() int64 {
	if s.attr.size > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(s.attr.size)
}

// Sys implements fs.FileInfo.
// It returns the Attributes the view was made from.
func (s stat) Sys() any {
	return s.attr
}
