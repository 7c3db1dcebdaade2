package drvmetrics

import (
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/ngicks/go-fsys-helper/drvfs"
	"github.com/ngicks/go-fsys-helper/drvfs/memdrv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
)

func TestDriver(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := New(memdrv.New(), reg, WithClock(clockwork.NewFakeClock()))
	fsys := drvfs.New(d)

	assert.NilError(t, fsys.WriteFile("a.txt", []byte("hello"), 0o644))
	bin, err := fsys.ReadFile("a.txt")
	assert.NilError(t, err)
	assert.Equal(t, "hello", string(bin))
	_, err = fsys.Open("missing")
	assert.Assert(t, err != nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(d.calls.WithLabelValues("open", "success", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.calls.WithLabelValues("open", "error", "4")))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.calls.WithLabelValues("close", "success", "0")))
	assert.Equal(t, 5.0, testutil.ToFloat64(d.bytes.WithLabelValues("write")))
	assert.Equal(t, 5.0, testutil.ToFloat64(d.bytes.WithLabelValues("read")))
	assert.Equal(t, 0.0, testutil.ToFloat64(d.openFiles))

	f, err := fsys.Open("a.txt")
	assert.NilError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.openFiles))
	assert.NilError(t, f.Close())
	assert.Equal(t, 0.0, testutil.ToFloat64(d.openFiles))

	expected := `
# HELP drvfs_driver_calls_total Total number of driver calls by operation and result
# TYPE drvfs_driver_calls_total counter
drvfs_driver_calls_total{code="0",op="close",status="success"} 3
drvfs_driver_calls_total{code="0",op="open",status="success"} 3
drvfs_driver_calls_total{code="0",op="read",status="success"} 2
drvfs_driver_calls_total{code="0",op="write",status="success"} 1
drvfs_driver_calls_total{code="4",op="open",status="error"} 1
`
	assert.NilError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "drvfs_driver_calls_total"))

	// every call is timed.
	assert.Equal(t, 4, testutil.CollectAndCount(d.duration), "open, write, read and close")
}
