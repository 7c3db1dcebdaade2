package driver

import (
	"bytes"
	"strings"
)

// CPath is a NUL-terminated byte path.
//
// A valid CPath ends with exactly one NUL and contains no other NUL.
type CPath []byte

// Valid reports whether p is properly terminated and has no interior NUL.
func (p CPath) Valid() bool {
	return len(p) > 0 && p[len(p)-1] == 0 && bytes.IndexByte(p[:len(p)-1], 0) < 0
}

// Bytes returns p without the terminating NUL.
// The returned slice shares memory with p.
func (p CPath) Bytes() []byte {
	if len(p) == 0 {
		return nil
	}
	if i := bytes.IndexByte(p, 0); i >= 0 {
		return p[:i]
	}
	return p
}

func (p CPath) String() string {
	return string(p.Bytes())
}

// Clone returns a copy of p that does not share memory.
func (p CPath) Clone() CPath {
	return bytes.Clone(p)
}

// MaxNameLen is the longest file name a volume accepts, in bytes.
const MaxNameLen = 255

// ValidName reports whether name is acceptable as a single path segment on the volume.
// Control characters and "*:<>?\| are rejected.
func ValidName(name string) bool {
	if len(name) > MaxNameLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || strings.IndexByte(`"*:<>?\|`, c) >= 0 {
			return false
		}
	}
	return true
}
