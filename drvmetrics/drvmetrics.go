// Package drvmetrics instruments a [driver.Driver] with Prometheus metrics.
//
// Every call is counted by operation and result code and its latency observed.
// Bytes moved by Read and Write and the number of open files are tracked as well.
package drvmetrics

import (
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "drvfs"

type Option interface {
	apply(*Driver)
}

type optionClock [1]clockwork.Clock

func (o optionClock) apply(d *Driver) {
	d.clock = o[0]
}

// WithClock sets the clock timing driver calls.
func WithClock(c clockwork.Clock) Option {
	return optionClock{c}
}

var _ driver.Driver = (*Driver)(nil)

type Driver struct {
	inner driver.Driver
	clock clockwork.Clock

	calls     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	bytes     *prometheus.CounterVec
	openFiles prometheus.Gauge
}

// New wraps inner and registers its collectors to reg.
// It panics if the collectors are already registered, as promauto does.
func New(inner driver.Driver, reg prometheus.Registerer, opts ...Option) *Driver {
	d := &Driver{
		inner: inner,
		clock: clockwork.NewRealClock(),
		calls: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "driver_calls_total",
				Help:      "Total number of driver calls by operation and result",
			},
			[]string{"op", "status", "code"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "driver_call_duration_seconds",
				Help:      "Duration of driver calls in seconds",
				Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
			},
			[]string{"op"},
		),
		bytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "driver_bytes_total",
				Help:      "Total bytes transferred by Read and Write",
			},
			[]string{"direction"},
		),
		openFiles: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "driver_open_files",
				Help:      "Current number of open file objects",
			},
		),
	}
	for _, o := range opts {
		o.apply(d)
	}
	return d
}

func statusOf(r driver.Result) string {
	if r == driver.OK {
		return "success"
	}
	return "error"
}

// observe records a call of op that started at start.
func (d *Driver) observe(op string, start time.Time, r driver.Result) {
	d.calls.WithLabelValues(op, statusOf(r), strconv.FormatUint(uint64(r), 10)).Inc()
	d.duration.WithLabelValues(op).Observe(d.clock.Since(start).Seconds())
}

func (d *Driver) Open(path driver.CPath, mode driver.Mode) (fp driver.Object, r driver.Result) {
	defer func(start time.Time) {
		d.observe("open", start, r)
		if r == driver.OK {
			d.openFiles.Inc()
		}
	}(d.clock.Now())
	return d.inner.Open(path, mode)
}

func (d *Driver) Close(fp driver.Object) (r driver.Result) {
	defer func(start time.Time) {
		d.observe("close", start, r)
		if r == driver.OK {
			d.openFiles.Dec()
		}
	}(d.clock.Now())
	return d.inner.Close(fp)
}

func (d *Driver) Read(fp driver.Object, buf []byte) (n int, r driver.Result) {
	defer func(start time.Time) {
		d.observe("read", start, r)
		d.bytes.WithLabelValues("read").Add(float64(n))
	}(d.clock.Now())
	return d.inner.Read(fp, buf)
}

func (d *Driver) Write(fp driver.Object, buf []byte) (n int, r driver.Result) {
	defer func(start time.Time) {
		d.observe("write", start, r)
		d.bytes.WithLabelValues("write").Add(float64(n))
	}(d.clock.Now())
	return d.inner.Write(fp, buf)
}

func (d *Driver) Lseek(fp driver.Object, ofs uint64) (r driver.Result) {
	defer func(start time.Time) { d.observe("lseek", start, r) }(d.clock.Now())
	return d.inner.Lseek(fp, ofs)
}

func (d *Driver) Truncate(fp driver.Object) (r driver.Result) {
	defer func(start time.Time) { d.observe("truncate", start, r) }(d.clock.Now())
	return d.inner.Truncate(fp)
}

func (d *Driver) Sync(fp driver.Object) (r driver.Result) {
	defer func(start time.Time) { d.observe("sync", start, r) }(d.clock.Now())
	return d.inner.Sync(fp)
}

func (d *Driver) Stat(path driver.CPath) (info driver.FileInfo, r driver.Result) {
	defer func(start time.Time) { d.observe("stat", start, r) }(d.clock.Now())
	return d.inner.Stat(path)
}

func (d *Driver) Chmod(path driver.CPath, attr, mask driver.Attr) (r driver.Result) {
	defer func(start time.Time) { d.observe("chmod", start, r) }(d.clock.Now())
	return d.inner.Chmod(path, attr, mask)
}

func (d *Driver) Mkdir(path driver.CPath) (r driver.Result) {
	defer func(start time.Time) { d.observe("mkdir", start, r) }(d.clock.Now())
	return d.inner.Mkdir(path)
}

func (d *Driver) Unlink(path driver.CPath) (r driver.Result) {
	defer func(start time.Time) { d.observe("unlink", start, r) }(d.clock.Now())
	return d.inner.Unlink(path)
}

func (d *Driver) Rename(oldPath, newPath driver.CPath) (r driver.Result) {
	defer func(start time.Time) { d.observe("rename", start, r) }(d.clock.Now())
	return d.inner.Rename(oldPath, newPath)
}

func (d *Driver) OpenDir(path driver.CPath) (dp driver.Dir, r driver.Result) {
	defer func(start time.Time) { d.observe("opendir", start, r) }(d.clock.Now())
	return d.inner.OpenDir(path)
}

func (d *Driver) ReadDir(dp driver.Dir) (info driver.FileInfo, r driver.Result) {
	defer func(start time.Time) { d.observe("readdir", start, r) }(d.clock.Now())
	return d.inner.ReadDir(dp)
}

func (d *Driver) CloseDir(dp driver.Dir) (r driver.Result) {
	defer func(start time.Time) { d.observe("closedir", start, r) }(d.clock.Now())
	return d.inner.CloseDir(dp)
}

func (d *Driver) Getcwd(buf []byte) (r driver.Result) {
	defer func(start time.Time) { d.observe("getcwd", start, r) }(d.clock.Now())
	return d.inner.Getcwd(buf)
}

func (d *Driver) Chdir(path driver.CPath) (r driver.Result) {
	defer func(start time.Time) { d.observe("chdir", start, r) }(d.clock.Now())
	return d.inner.Chdir(path)
}
