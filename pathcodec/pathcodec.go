// Package pathcodec converts between Go path strings and the NUL-terminated
// byte paths the driver consumes, and resolves paths lexically.
package pathcodec

import (
	"errors"
	"strings"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
)

// Separator is the only path separator the driver understands.
const Separator = '/'

var (
	ErrInteriorNul      = errors.New("path contains an interior nul byte")
	ErrInvalidComponent = errors.New("invalid path component")
	ErrSeparatorInPath  = errors.New("path segment contains separator `/`")
)

// Encode returns p as a NUL-terminated driver path.
// A p containing a NUL byte is rejected with an InvalidInput error.
func Encode(p string) (driver.CPath, error) {
	if strings.IndexByte(p, 0) >= 0 {
		return nil, fserr.Wrap(fserr.InvalidInput, "invalid path", ErrInteriorNul)
	}
	buf := make([]byte, len(p)+1)
	copy(buf, p)
	return driver.CPath(buf), nil
}

// Decode converts a driver path, terminated or not, back into a string.
func Decode(p driver.CPath) string {
	return p.String()
}

// DecodeBytes converts a name returned by the driver.
// Bytes after the first NUL, if any, are ignored.
func DecodeBytes(b []byte) string {
	return driver.CPath(b).String()
}

// IsAbs reports whether p starts at the root.
func IsAbs(p string) bool {
	return len(p) > 0 && p[0] == Separator
}

// Join joins elem with a single separator, preserving a leading root.
// Unlike path.Join it does not resolve dot components.
func Join(elem ...string) string {
	var b strings.Builder
	for _, e := range elem {
		if e == "" {
			continue
		}
		if IsAbs(e) {
			b.Reset()
		} else if b.Len() > 0 && !strings.HasSuffix(b.String(), "/") {
			b.WriteByte(Separator)
		}
		b.WriteString(e)
	}
	return b.String()
}

// ListSeparator separates entries of a path list. It is the same byte as [Separator],
// so a list entry can only be a single path segment.
const ListSeparator = Separator

// SplitPaths splits a path list. An empty list yields one empty entry.
func SplitPaths(list string) []string {
	return strings.Split(list, string(ListSeparator))
}

// JoinPaths is the inverse of SplitPaths.
// A segment containing the separator cannot be represented and is rejected.
func JoinPaths(paths ...string) (string, error) {
	for _, p := range paths {
		if strings.IndexByte(p, ListSeparator) >= 0 {
			return "", fserr.Wrap(fserr.InvalidInput, "failed to join paths", ErrSeparatorInPath)
		}
	}
	return strings.Join(paths, string(ListSeparator)), nil
}
