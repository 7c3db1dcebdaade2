package driver

import "strconv"

// Result is a result code returned from the driver. Zero means success.
type Result uint32

const (
	OK                Result = iota // Succeeded
	DiskErr                         // A hard error occurred in the low level disk I/O layer
	IntErr                          // Assertion failed
	NotReady                        // The physical drive cannot work
	NoFile                          // Could not find the file
	NoPath                          // Could not find the path
	InvalidName                     // The path name format is invalid
	Denied                          // Access denied due to prohibited access or directory full
	Exist                           // Access denied due to prohibited access
	InvalidObject                   // The file/directory object is invalid
	WriteProtected                  // The physical drive is write protected
	InvalidDrive                    // The logical drive number is invalid
	NotEnabled                      // The volume has no work area
	NoFilesystem                    // There is no valid FAT volume
	MkfsAborted                     // The f_mkfs() aborted due to any problem
	Timeout                         // Could not get a grant to access the volume within defined period
	Locked                          // The operation is rejected according to the file sharing policy
	NotEnoughCore                   // LFN working buffer could not be allocated
	TooManyOpenFiles                // Number of open files > FF_FS_LOCK
	InvalidParameter                // Given parameter is invalid
)

var resultMessages = [...]string{
	OK:               "Succeeded",
	DiskErr:          "A hard error occurred in the low level disk I/O layer",
	IntErr:           "Assertion failed",
	NotReady:         "The physical drive cannot work",
	NoFile:           "Could not find the file",
	NoPath:           "Could not find the path",
	InvalidName:      "The path name format is invalid",
	Denied:           "Access denied due to prohibited access or directory full",
	Exist:            "Access denied due to prohibited access",
	InvalidObject:    "The file/directory object is invalid",
	WriteProtected:   "The physical drive is write protected",
	InvalidDrive:     "The logical drive number is invalid",
	NotEnabled:       "The volume has no work area",
	NoFilesystem:     "There is no valid FAT volume",
	MkfsAborted:      "The f_mkfs() aborted due to any problem",
	Timeout:          "Could not get a grant to access the volume within defined period",
	Locked:           "The operation is rejected according to the file sharing policy",
	NotEnoughCore:    "LFN working buffer could not be allocated",
	TooManyOpenFiles: "Number of open files > FF_FS_LOCK",
	InvalidParameter: "Given parameter is invalid",
}

// String returns the driver's description of r.
func (r Result) String() string {
	if int(r) < len(resultMessages) {
		return resultMessages[r]
	}
	return "Unknown error (" + strconv.FormatUint(uint64(r), 10) + ")"
}

// Known reports whether r is one of the codes defined above.
func (r Result) Known() bool {
	return int(r) < len(resultMessages)
}
