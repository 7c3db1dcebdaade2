// Package fserr defines the error taxonomy surfaced by drvfs.
//
// Every driver result code is translated into an [*Error] carrying a [Kind].
// The kinds are bridged to io/fs sentinel errors so callers can keep using
// errors.Is(err, fs.ErrNotExist) and friends.
package fserr

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
)

// Kind classifies an error.
type Kind uint8

const (
	Other Kind = iota
	NotFound
	InvalidInput
	PermissionDenied
	Interrupted
	TimedOut
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case InvalidInput:
		return "invalid input"
	case PermissionDenied:
		return "permission denied"
	case Interrupted:
		return "interrupted"
	case TimedOut:
		return "timed out"
	case Unsupported:
		return "unsupported"
	default:
		return "other"
	}
}

var (
	// ErrPoisoned is the cause of errors returned from a file whose
	// underlying object was left in an unknown state by a panicking driver call.
	ErrPoisoned = errors.New("lock poisoned")
	// ErrInvalidSeek is the cause of a seek that would move before byte 0 or overflow.
	ErrInvalidSeek = errors.New("invalid seek")
	// ErrUnsupported is the cause of calls into surfaces this platform does not have.
	ErrUnsupported = errors.New("operation not supported on this platform")
)

var _ error = (*Error)(nil)

// Error is an error with a [Kind].
//
// Code is the driver result code the error was translated from,
// or [driver.OK] if the error was not produced by the driver.
type Error struct {
	Kind Kind
	Code driver.Result
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is bridges e to io/fs sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e.Kind == NotFound
	case fs.ErrPermission:
		return e.Kind == PermissionDenied
	case fs.ErrInvalid:
		return e.Kind == InvalidInput
	case fs.ErrExist:
		return e.Code == driver.Exist
	case os.ErrDeadlineExceeded:
		return e.Kind == TimedOut
	case errors.ErrUnsupported:
		return e.Kind == Unsupported
	}
	return false
}

// New returns an error of kind with msg.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap returns an error of kind wrapping err.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first [*Error] in err's chain.
// It returns Other if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Code returns the driver code of the first [*Error] in err's chain.
func Code(err error) (driver.Result, bool) {
	var e *Error
	if errors.As(err, &e) && e.Code != driver.OK {
		return e.Code, true
	}
	return driver.OK, false
}

// Poisoned returns the error reported by operations on a poisoned file.
func Poisoned() error {
	return &Error{Kind: Other, Err: ErrPoisoned}
}

// NotSupported returns the fixed error for unsupported surfaces.
func NotSupported() error {
	return &Error{Kind: Unsupported, Err: ErrUnsupported}
}
