package memdrv

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"gotest.tools/v3/assert"
)

func p(s string) driver.CPath {
	return driver.CPath(s + "\x00")
}

func mustOpen(t *testing.T, d *Driver, path string, mode driver.Mode) driver.Object {
	t.Helper()
	fp, r := d.Open(p(path), mode)
	assert.Equal(t, driver.OK, r, "open %q", path)
	return fp
}

func TestOpenModes(t *testing.T) {
	d := New()

	_, r := d.Open(p("a.txt"), driver.FA_READ)
	assert.Equal(t, driver.NoFile, r)
	_, r = d.Open(p("nodir/a.txt"), driver.FA_WRITE|driver.FA_CREATE_ALWAYS)
	assert.Equal(t, driver.NoPath, r)

	fp := mustOpen(t, d, "a.txt", driver.FA_WRITE|driver.FA_CREATE_NEW)
	n, r := d.Write(fp, []byte("hello"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, 5, n)
	assert.Equal(t, uint64(5), fp.Tell())
	assert.Equal(t, driver.OK, d.Close(fp))
	assert.Equal(t, driver.InvalidObject, d.Close(fp))

	_, r = d.Open(p("a.txt"), driver.FA_WRITE|driver.FA_CREATE_NEW)
	assert.Equal(t, driver.Exist, r)

	fp = mustOpen(t, d, "a.txt", driver.FA_WRITE|driver.FA_OPEN_APPEND)
	assert.Equal(t, uint64(5), fp.Tell())
	_, r = d.Write(fp, []byte(" world"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, driver.OK, d.Close(fp))

	fp = mustOpen(t, d, "a.txt", driver.FA_READ)
	buf := make([]byte, 32)
	n, r = d.Read(fp, buf)
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, "hello world", string(buf[:n]))
	n, r = d.Read(fp, buf)
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, 0, n)
	_, r = d.Write(fp, []byte("x"))
	assert.Equal(t, driver.Denied, r)
	assert.Equal(t, driver.Denied, d.Truncate(fp))
	assert.Equal(t, driver.OK, d.Close(fp))

	fp = mustOpen(t, d, "a.txt", driver.FA_WRITE|driver.FA_CREATE_ALWAYS)
	assert.Equal(t, driver.OK, d.Close(fp))
	info, r := d.Stat(p("a.txt"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, uint64(0), info.Size)
	assert.Equal(t, "a.txt", string(info.Name))

	assert.Equal(t, driver.OK, d.Mkdir(p("dir")))
	_, r = d.Open(p("dir"), driver.FA_READ)
	assert.Equal(t, driver.NoFile, r)
	_, r = d.Open(p("dir"), driver.FA_WRITE|driver.FA_OPEN_ALWAYS)
	assert.Equal(t, driver.Denied, r)

	_, r = d.Open(driver.CPath("a.txt"), driver.FA_READ)
	assert.Equal(t, driver.InvalidParameter, r)
	_, r = d.Open(p("a?.txt"), driver.FA_READ)
	assert.Equal(t, driver.InvalidName, r)
	_, r = d.Open(p("/"), driver.FA_READ)
	assert.Equal(t, driver.InvalidName, r)
}

func TestSharingLock(t *testing.T) {
	d := New()
	w := mustOpen(t, d, "f", driver.FA_WRITE|driver.FA_CREATE_NEW)

	_, r := d.Open(p("f"), driver.FA_READ)
	assert.Equal(t, driver.Locked, r)
	_, r = d.Open(p("f"), driver.FA_WRITE)
	assert.Equal(t, driver.Locked, r)
	assert.Equal(t, driver.Locked, d.Unlink(p("f")))
	assert.Equal(t, driver.Locked, d.Rename(p("f"), p("g")))
	assert.Equal(t, driver.OK, d.Close(w))

	r1 := mustOpen(t, d, "f", driver.FA_READ)
	r2 := mustOpen(t, d, "f", driver.FA_READ)
	_, r = d.Open(p("f"), driver.FA_WRITE)
	assert.Equal(t, driver.Locked, r)
	assert.Equal(t, driver.OK, d.Close(r1))
	assert.Equal(t, driver.OK, d.Close(r2))

	assert.Equal(t, driver.OK, d.Unlink(p("f")))
}

func TestReentrancyDetected(t *testing.T) {
	d := New()
	fp := mustOpen(t, d, "f", driver.FA_READ|driver.FA_WRITE|driver.FA_CREATE_NEW)

	// simulate a call in progress on another goroutine.
	fp.(*file).busy.Store(true)
	_, r := d.Write(fp, []byte("x"))
	assert.Equal(t, driver.IntErr, r)
	assert.Equal(t, driver.IntErr, d.Lseek(fp, 0))

	fp.(*file).busy.Store(false)
	_, r = d.Write(fp, []byte("x"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, driver.OK, d.Close(fp))
}

func TestLseekAndTruncate(t *testing.T) {
	d := New()
	fp := mustOpen(t, d, "f", driver.FA_READ|driver.FA_WRITE|driver.FA_CREATE_NEW)

	_, r := d.Write(fp, []byte("0123456789"))
	assert.Equal(t, driver.OK, r)

	assert.Equal(t, driver.OK, d.Lseek(fp, 4))
	assert.Equal(t, driver.OK, d.Truncate(fp))
	info, _ := d.Stat(p("f"))
	assert.Equal(t, uint64(4), info.Size)

	// writable: extends with zeros
	assert.Equal(t, driver.OK, d.Lseek(fp, 8))
	assert.Equal(t, uint64(8), fp.Tell())
	assert.Equal(t, driver.OK, d.Lseek(fp, 0))
	buf := make([]byte, 16)
	n, _ := d.Read(fp, buf)
	assert.DeepEqual(t, []byte("0123\x00\x00\x00\x00"), buf[:n])
	assert.Equal(t, driver.OK, d.Close(fp))

	// read-only: clipped
	fp = mustOpen(t, d, "f", driver.FA_READ)
	assert.Equal(t, driver.OK, d.Lseek(fp, 100))
	assert.Equal(t, uint64(8), fp.Tell())
	assert.Equal(t, driver.OK, d.Close(fp))
}

func TestCapacity(t *testing.T) {
	d := New(WithCapacity(8))
	fp := mustOpen(t, d, "f", driver.FA_WRITE|driver.FA_CREATE_NEW)
	n, r := d.Write(fp, []byte("0123456789"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, 8, n)
	n, r = d.Write(fp, []byte("x"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, 0, n)
	assert.Equal(t, driver.OK, d.Close(fp))

	assert.Equal(t, driver.OK, d.Unlink(p("f")))
	fp = mustOpen(t, d, "g", driver.FA_WRITE|driver.FA_CREATE_NEW)
	n, _ = d.Write(fp, []byte("01234567"))
	assert.Equal(t, 8, n)
	assert.Equal(t, driver.OK, d.Close(fp))
}

func TestLseekBeyondVolume(t *testing.T) {
	assert.Equal(t, int64(DefaultCapacity), New().capacity)

	d := New(WithCapacity(16))
	fp := mustOpen(t, d, "f", driver.FA_WRITE|driver.FA_CREATE_NEW)
	_, r := d.Write(fp, []byte("abc"))
	assert.Equal(t, driver.OK, r)

	assert.Equal(t, driver.OK, d.Lseek(fp, 1<<62))
	assert.Equal(t, uint64(16), fp.Tell())
	n, r := d.Write(fp, []byte("x"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, 0, n)

	assert.Equal(t, driver.OK, d.Lseek(fp, 1))
	n, r = d.Write(fp, []byte("B"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, 1, n)
	assert.Equal(t, driver.OK, d.Close(fp))

	info, r := d.Stat(p("f"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, uint64(16), info.Size)
}

func TestGrowth(t *testing.T) {
	type testCase struct {
		name      string
		capacity  int64
		used      int64
		cur, size uint64
		want      uint64
	}
	for _, tc := range []testCase{
		{"shrink", 0, 0, 10, 5, 0},
		{"unlimited", 0, 0, 0, 100, 100},
		{"file size cap", 0, 0, 0, 1 << 62, MaxFileSize},
		{"at file size cap", 0, 0, MaxFileSize, 1 << 40, 0},
		{"volume cap", 64, 10, 10, 1 << 62, 54},
		{"volume full", 64, 64, 64, 65, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := New(WithCapacity(tc.capacity))
			d.used = tc.used
			assert.Equal(t, tc.want, d.growth(tc.cur, tc.size))
		})
	}
}

func TestMaxOpenFiles(t *testing.T) {
	d := New(WithMaxOpenFiles(1))
	fp := mustOpen(t, d, "f", driver.FA_WRITE|driver.FA_CREATE_NEW)
	_, r := d.Open(p("g"), driver.FA_WRITE|driver.FA_CREATE_NEW)
	assert.Equal(t, driver.TooManyOpenFiles, r)
	assert.Equal(t, driver.OK, d.Close(fp))
	fp = mustOpen(t, d, "g", driver.FA_WRITE|driver.FA_CREATE_NEW)
	assert.Equal(t, driver.OK, d.Close(fp))
}

func TestDirectories(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2017, 1, 1, 11, 17, 30, 0, time.UTC))
	d := New(WithWallClock(fake))

	assert.Equal(t, driver.OK, d.Mkdir(p("/a")))
	assert.Equal(t, driver.Exist, d.Mkdir(p("/a")))
	assert.Equal(t, driver.NoPath, d.Mkdir(p("/x/y")))
	assert.Equal(t, driver.OK, d.Mkdir(p("/a/b")))
	fp := mustOpen(t, d, "/a/c.txt", driver.FA_WRITE|driver.FA_CREATE_NEW)
	assert.Equal(t, driver.OK, d.Close(fp))

	dp, r := d.OpenDir(p("/a"))
	assert.Equal(t, driver.OK, r)
	var names []string
	for {
		info, r := d.ReadDir(dp)
		assert.Equal(t, driver.OK, r)
		if info.End() {
			break
		}
		names = append(names, string(info.Name))
		assert.Equal(t, uint16(0x4A21), info.Date)
		assert.Equal(t, uint16(11<<11|17<<5|15), info.Time)
	}
	assert.DeepEqual(t, []string{"b", "c.txt"}, names)
	assert.Equal(t, driver.OK, d.CloseDir(dp))
	_, r = d.ReadDir(dp)
	assert.Equal(t, driver.InvalidObject, r)

	_, r = d.OpenDir(p("/a/c.txt"))
	assert.Equal(t, driver.NoPath, r)

	assert.Equal(t, driver.Denied, d.Unlink(p("/a")))
	assert.Equal(t, driver.NoFile, d.Unlink(p("/a/zzz")))

	info, r := d.Stat(p("/a/b"))
	assert.Equal(t, driver.OK, r)
	assert.Assert(t, info.Attrib.Dir())

	assert.Equal(t, driver.InvalidName, d.Rename(p("/a"), p("/a/b/a")))
	assert.Equal(t, driver.OK, d.Rename(p("/a/c.txt"), p("/a/b/d.txt")))
	_, r = d.Stat(p("/a/b/d.txt"))
	assert.Equal(t, driver.OK, r)
	assert.Equal(t, driver.Exist, d.Rename(p("/a/b"), p("/a")))
}

func TestChmod(t *testing.T) {
	d := New()
	fp := mustOpen(t, d, "f", driver.FA_WRITE|driver.FA_CREATE_NEW)
	assert.Equal(t, driver.OK, d.Close(fp))

	assert.Equal(t, driver.OK, d.Chmod(p("f"), driver.AM_RDO|driver.AM_DIR, driver.AM_RDO|driver.AM_DIR))
	info, _ := d.Stat(p("f"))
	assert.Assert(t, info.Attrib.ReadOnly())
	assert.Assert(t, !info.Attrib.Dir(), "directory bit must not change")

	_, r := d.Open(p("f"), driver.FA_WRITE)
	assert.Equal(t, driver.Denied, r)
	assert.Equal(t, driver.Denied, d.Unlink(p("f")))

	assert.Equal(t, driver.OK, d.Chmod(p("f"), 0, driver.AM_RDO))
	assert.Equal(t, driver.OK, d.Unlink(p("f")))
}

func TestWriteProtected(t *testing.T) {
	d := New()
	d.SetWriteProtected(true)
	_, r := d.Open(p("f"), driver.FA_WRITE|driver.FA_CREATE_NEW)
	assert.Equal(t, driver.WriteProtected, r)
	assert.Equal(t, driver.WriteProtected, d.Mkdir(p("d")))
	d.SetWriteProtected(false)
	assert.Equal(t, driver.OK, d.Mkdir(p("d")))
}

func TestCwd(t *testing.T) {
	d := New()
	assert.Equal(t, driver.OK, d.Mkdir(p("/some")))
	assert.Equal(t, driver.OK, d.Mkdir(p("/some/dir")))

	buf := make([]byte, 2)
	assert.Equal(t, driver.OK, d.Getcwd(buf))
	assert.Equal(t, "/", driver.CPath(buf).String())

	assert.Equal(t, driver.OK, d.Chdir(p("some/dir")))
	assert.Equal(t, driver.NotEnoughCore, d.Getcwd(buf))
	buf = make([]byte, len("/some/dir")+1)
	assert.Equal(t, driver.OK, d.Getcwd(buf))
	assert.Equal(t, "/some/dir", driver.CPath(buf).String())

	assert.Equal(t, driver.NoPath, d.Chdir(p("missing")))
	assert.Equal(t, driver.Denied, d.Unlink(p("/some/dir")))

	fp := mustOpen(t, d, "../rel.txt", driver.FA_WRITE|driver.FA_CREATE_NEW)
	assert.Equal(t, driver.OK, d.Close(fp))
	_, r := d.Stat(p("/some/rel.txt"))
	assert.Equal(t, driver.OK, r)
}
