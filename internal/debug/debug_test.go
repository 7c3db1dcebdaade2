package debug

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestAssert(t *testing.T) {
	Assert(true, "never fails")

	if !Enabled {
		Assert(false, "ignored without drvfs_debug")
		return
	}

	defer func() {
		rec := recover()
		assert.Equal(t, "assertion failed: code 7", rec)
	}()
	Assert(false, "code %d", 7)
	t.Fatal("not reached")
}
