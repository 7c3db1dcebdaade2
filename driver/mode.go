package driver

// Mode is the access and creation mode passed to Open.
type Mode uint8

const (
	FA_READ          Mode = 0x01
	FA_WRITE         Mode = 0x02
	FA_OPEN_EXISTING Mode = 0x00
	FA_CREATE_NEW    Mode = 0x04
	FA_CREATE_ALWAYS Mode = 0x08
	FA_OPEN_ALWAYS   Mode = 0x10
	FA_SEEKEND       Mode = 0x20
	FA_OPEN_APPEND   Mode = 0x30

	// creationMask selects the bits deciding how a missing or existing file is treated.
	creationMask = FA_CREATE_NEW | FA_CREATE_ALWAYS | FA_OPEN_ALWAYS
)

func (m Mode) Readable() bool { return m&FA_READ != 0 }
func (m Mode) Writable() bool { return m&FA_WRITE != 0 }

// Creation returns the creation bits of m, one of FA_OPEN_EXISTING,
// FA_CREATE_NEW, FA_CREATE_ALWAYS or FA_OPEN_ALWAYS.
//
// If more than one bit is set, CREATE_NEW wins over CREATE_ALWAYS, which wins over OPEN_ALWAYS.
func (m Mode) Creation() Mode {
	switch c := m & creationMask; {
	case c&FA_CREATE_NEW != 0:
		return FA_CREATE_NEW
	case c&FA_CREATE_ALWAYS != 0:
		return FA_CREATE_ALWAYS
	case c&FA_OPEN_ALWAYS != 0:
		return FA_OPEN_ALWAYS
	default:
		return FA_OPEN_EXISTING
	}
}

// SeekEnd reports whether the file pointer is moved to the end of file after open.
func (m Mode) SeekEnd() bool { return m&FA_SEEKEND != 0 }

// Attr is a set of file attribute bits.
type Attr uint8

const (
	AM_RDO Attr = 0x01 // Read only
	AM_HID Attr = 0x02 // Hidden
	AM_SYS Attr = 0x04 // System
	AM_DIR Attr = 0x10 // Directory
	AM_ARC Attr = 0x20 // Archive
)

func (a Attr) ReadOnly() bool { return a&AM_RDO != 0 }
func (a Attr) Dir() bool      { return a&AM_DIR != 0 }
