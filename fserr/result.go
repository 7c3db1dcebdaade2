package fserr

import "github.com/ngicks/go-fsys-helper/drvfs/driver"

var resultKinds = [...]Kind{
	driver.DiskErr:          Other,
	driver.IntErr:           Other,
	driver.NotReady:         Other,
	driver.NoFile:           NotFound,
	driver.NoPath:           NotFound,
	driver.InvalidName:      InvalidInput,
	driver.Denied:           PermissionDenied,
	driver.Exist:            PermissionDenied,
	driver.InvalidObject:    InvalidInput,
	driver.WriteProtected:   PermissionDenied,
	driver.InvalidDrive:     Other,
	driver.NotEnabled:       Other,
	driver.NoFilesystem:     Other,
	driver.MkfsAborted:      Interrupted,
	driver.Timeout:          TimedOut,
	driver.Locked:           PermissionDenied,
	driver.NotEnoughCore:    Other,
	driver.TooManyOpenFiles: Other,
	driver.InvalidParameter: InvalidInput,
}

// KindOfResult returns the Kind r translates to.
// Unknown codes are Other.
func KindOfResult(r driver.Result) Kind {
	if int(r) < len(resultKinds) {
		return resultKinds[r]
	}
	return Other
}

// FromResult translates a driver result code.
// It returns nil for [driver.OK].
func FromResult(r driver.Result) error {
	if r == driver.OK {
		return nil
	}
	msg := r.String()
	if !r.Known() {
		msg = "Unknown error"
	}
	return &Error{Kind: KindOfResult(r), Code: r, Msg: msg}
}
