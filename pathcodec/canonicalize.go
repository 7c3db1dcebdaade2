package pathcodec

import (
	"strings"

	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
)

// Canonicalize resolves p lexically without consulting the driver.
//
// cwd is called only for a leading "." and its result is resolved in place of it.
// A ".." that has nothing to remove fails with an Other error instead of escaping the resolved prefix.
// A relative p without a leading "." stays relative.
func Canonicalize(p string, cwd func() (string, error)) (string, error) {
	var r resolver
	for c := range Components(p) {
		switch c.Kind {
		case Cur:
			wd, err := cwd()
			if err != nil {
				return "", err
			}
			if err := r.pushPath(wd); err != nil {
				return "", err
			}
		default:
			if err := r.push(c); err != nil {
				return "", err
			}
		}
	}
	return r.String(), nil
}

type resolver struct {
	rooted bool
	stack  []string
}

func (r *resolver) push(c Component) error {
	switch c.Kind {
	case Root:
		r.rooted = true
		r.stack = r.stack[:0]
	case Parent:
		if len(r.stack) == 0 {
			return fserr.Wrap(fserr.Other, "", ErrInvalidComponent)
		}
		r.stack = r.stack[:len(r.stack)-1]
	case Normal:
		r.stack = append(r.stack, c.Name)
	}
	return nil
}

// pushPath appends every component of p. An absolute p replaces what was resolved so far.
func (r *resolver) pushPath(p string) error {
	for c := range Components(p) {
		if err := r.push(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) String() string {
	joined := strings.Join(r.stack, "/")
	if r.rooted {
		return "/" + joined
	}
	return joined
}
