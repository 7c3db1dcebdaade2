package pathcodec

import (
	"iter"
	"strings"
)

// Kind is the type of a path component.
type Kind int

const (
	Root Kind = iota
	Cur
	Parent
	Normal
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Cur:
		return "Cur"
	case Parent:
		return "Parent"
	case Normal:
		return "Normal"
	}
	return "Kind(?)"
}

type Component struct {
	Kind Kind
	// Name is set for Normal components only.
	Name string
}

// Components yields the components of p.
//
// Repeated separators are collapsed and a trailing separator is ignored.
// A "." is reported as Cur only when it leads a relative path; elsewhere it is dropped.
func Components(p string) iter.Seq[Component] {
	return func(yield func(Component) bool) {
		rest := p
		if IsAbs(rest) {
			if !yield(Component{Kind: Root}) {
				return
			}
			rest = strings.TrimLeft(rest, "/")
		} else if rest == "." || strings.HasPrefix(rest, "./") {
			if !yield(Component{Kind: Cur}) {
				return
			}
			rest = rest[1:]
		}
		for seg := range strings.SplitSeq(rest, "/") {
			var c Component
			switch seg {
			case "", ".":
				continue
			case "..":
				c = Component{Kind: Parent}
			default:
				c = Component{Kind: Normal, Name: seg}
			}
			if !yield(c) {
				return
			}
		}
	}
}
