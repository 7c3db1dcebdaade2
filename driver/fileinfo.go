package driver

import "time"

// FileInfo is the raw record returned from Stat and ReadDir.
type FileInfo struct {
	Size uint64
	// Date is the packed modification date: bits 15-9 year since 1980, 8-5 month, 4-0 day.
	Date uint16
	// Time is the packed modification time: bits 15-11 hour, 10-5 minute, 4-0 second/2.
	Time   uint16
	Attrib Attr
	// Name is the entry name without a NUL.
	// An empty Name returned from ReadDir marks the end of the directory.
	Name []byte
}

// End reports whether fi is the end-of-directory sentinel.
func (fi FileInfo) End() bool {
	return len(fi.Name) == 0
}

// PackDate encodes the date of t into the on-disk layout.
// Years before 1980 are stored as 1980, years after 2107 as 2107.
func PackDate(t time.Time) uint16 {
	year := min(max(t.Year(), 1980), 2107) - 1980
	return uint16(year)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
}

// PackTime encodes the time of day of t into the on-disk layout.
func PackTime(t time.Time) uint16 {
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}
