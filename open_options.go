package drvfs

import (
	"os"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
)

// OpenOptions describes how a file is opened.
type OpenOptions struct {
	Read   bool
	Write  bool
	Append bool
	// Truncate empties an existing file after opening it.
	Truncate bool
	// Create creates the file if missing. An existing file is emptied.
	Create bool
	// CreateNew creates the file and fails if it already exists.
	CreateNew bool
	// PreserveExisting makes Create keep the content of an existing file,
	// as os.O_CREATE does without os.O_TRUNC.
	PreserveExisting bool
}

// ReadOnly is the mode of [Fs.Open]: read only, the file must exist.
func ReadOnly() OpenOptions { return OpenOptions{Read: true} }

// CreateTruncate is the mode of [Fs.Create]: write, create and truncate.
func CreateTruncate() OpenOptions {
	return OpenOptions{Read: true, Write: true, Create: true, Truncate: true}
}

// Mode validates o and derives the driver open mode.
//
// Without Write or Append, none of Truncate, Create or CreateNew may be set.
// With Append, Truncate is only allowed together with CreateNew.
// Illegal combinations fail with an InvalidInput error.
//
// Create together with Append maps to create-always plus seek-to-end,
// so an existing file is emptied before appending.
// Access bits come only from Read and Write: Append alone opens a file that cannot be written.
func (o OpenOptions) Mode() (driver.Mode, error) {
	switch {
	case o.Append:
		if o.Truncate && !o.CreateNew {
			return 0, fserr.New(fserr.InvalidInput, "invalid open options: truncate with append")
		}
	case !o.Write:
		if o.Truncate || o.Create || o.CreateNew {
			return 0, fserr.New(fserr.InvalidInput, "invalid open options: creation or truncation without write access")
		}
	}

	var mode driver.Mode
	switch {
	case o.CreateNew && o.Append:
		mode = driver.FA_OPEN_APPEND
	case o.CreateNew:
		mode = driver.FA_CREATE_NEW
	case o.Create && o.PreserveExisting && o.Append:
		mode = driver.FA_OPEN_APPEND
	case o.Create && o.PreserveExisting:
		mode = driver.FA_OPEN_ALWAYS
	case o.Create && o.Append:
		mode = driver.FA_CREATE_ALWAYS | driver.FA_SEEKEND
	case o.Create:
		mode = driver.FA_CREATE_ALWAYS
	case o.Append:
		mode = driver.FA_SEEKEND
	}

	if o.Read {
		mode |= driver.FA_READ
	}
	if o.Write {
		mode |= driver.FA_WRITE
	}
	return mode, nil
}

// truncatesOnOpen reports whether o asks for truncation the driver mode does not perform.
func (o OpenOptions) truncatesOnOpen(mode driver.Mode) bool {
	return o.Truncate && o.Write && mode.Creation() != driver.FA_CREATE_ALWAYS && mode.Creation() != driver.FA_CREATE_NEW
}

// OptionsFromFlag converts os.OpenFile flags.
// O_CREATE keeps an existing file unless O_TRUNC is also given.
// O_EXCL without O_CREATE is ignored, as with open(2).
func OptionsFromFlag(flag int) OpenOptions {
	var o OpenOptions
	switch flag & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR) {
	case os.O_RDONLY:
		o.Read = true
	case os.O_WRONLY:
		o.Write = true
	case os.O_RDWR:
		o.Read, o.Write = true, true
	}
	o.Append = flag&os.O_APPEND != 0
	o.Truncate = flag&os.O_TRUNC != 0
	if flag&os.O_CREATE != 0 {
		if flag&os.O_EXCL != 0 {
			o.CreateNew = true
		} else {
			o.Create = true
			o.PreserveExisting = !o.Truncate
		}
	}
	return o
}
