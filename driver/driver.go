// Package driver defines the boundary to a block-device filesystem driver.
//
// The driver is modeled after FatFs: it takes NUL-terminated byte paths,
// reports outcomes as small integer [Result] codes and is not reentrant
// with respect to a single open [Object]. Implementations are not required
// to be safe for concurrent use on the same Object; callers must serialize.
// Calls on different objects may run concurrently.
package driver

// Object is an open file object owned by the driver.
type Object interface {
	// Tell reports the current read/write pointer.
	Tell() uint64
}

// Dir is an open directory object owned by the driver.
type Dir interface{}

// Driver is the set of primitives the filesystem driver exposes.
//
// Every method reports [OK] on success. Paths are [CPath] values.
type Driver interface {
	// Open opens or creates a file according to mode.
	Open(path CPath, mode Mode) (Object, Result)
	// Close releases fp. fp must not be used after Close.
	Close(fp Object) Result
	// Read reads up to len(buf) bytes at the file pointer and advances it.
	// Reading at the end of file reports OK with n == 0.
	Read(fp Object, buf []byte) (n int, r Result)
	// Write writes buf at the file pointer and advances it.
	// n may be less than len(buf) when the volume is full.
	Write(fp Object, buf []byte) (n int, r Result)
	// Lseek moves the file pointer to the absolute position ofs.
	Lseek(fp Object, ofs uint64) Result
	// Truncate truncates the file at the current file pointer.
	Truncate(fp Object) Result
	// Sync flushes cached data of fp.
	Sync(fp Object) Result

	Stat(path CPath) (FileInfo, Result)
	// Chmod changes the attribute bits selected by mask to attr.
	Chmod(path CPath, attr, mask Attr) Result
	Mkdir(path CPath) Result
	// Unlink removes a file or an empty directory.
	Unlink(path CPath) Result
	Rename(oldPath, newPath CPath) Result

	OpenDir(path CPath) (Dir, Result)
	// ReadDir reads the next entry of dp.
	// At the end of the directory it returns OK and a FileInfo whose Name is empty.
	ReadDir(dp Dir) (FileInfo, Result)
	CloseDir(dp Dir) Result

	// Getcwd writes the NUL-terminated current directory into buf.
	// It reports NotEnoughCore if buf is too small.
	Getcwd(buf []byte) Result
	Chdir(path CPath) Result
}
