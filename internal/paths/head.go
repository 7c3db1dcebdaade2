// Package paths iterates over the prefixes of slash separated driver paths.
package paths

import (
	"iter"
	"path"
	"strings"
)

// FromHead yields every prefix of name that ends at a separator, then name itself.
// name is cleaned first. A rooted name starts with "/".
//
// For "/a/b/c" it yields "/", "/a", "/a/b" and "/a/b/c".
func FromHead(name string) iter.Seq[string] {
	return func(yield func(string) bool) {
		cut := ""
		name := path.Clean(name)
		rest := name
		for len(rest) > 0 {
			i := strings.IndexByte(rest, '/')
			if i < 0 {
				yield(name)
				return
			}
			if i == 0 {
				if !yield("/") {
					return
				}
			} else {
				cut = name[:len(cut)+i]
				if !yield(cut) {
					return
				}
			}
			cut = name[:len(cut)+1] // include last sep
			rest = rest[i+1:]
		}
	}
}

// FromTail yields name, then each parent up to the first component or the root.
//
// For "/a/b/c" it yields "/a/b/c", "/a/b", "/a" and "/".
func FromTail(name string) iter.Seq[string] {
	return func(yield func(string) bool) {
		name := path.Clean(name)
		if !yield(name) {
			return
		}
		if name == "." || name == "/" {
			return
		}
		rest := name
		for {
			i := strings.LastIndexByte(rest, '/')
			if i < 0 {
				return
			}
			if i == 0 {
				yield("/")
				return
			}
			rest = rest[:i]
			if !yield(rest) {
				return
			}
		}
	}
}
