package drvfs

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/fserr"
)

// handle owns one open driver object shared by duplicated Files.
//
// Every driver call on fp runs under mu, exclusively except for reading the file pointer.
// The object is closed exactly once, when the last reference is released.
type handle struct {
	drv    driver.Driver
	logger *slog.Logger
	path   string
	refs   atomic.Int64

	mu       sync.RWMutex
	fp       driver.Object
	poisoned bool
}

func newHandle(drv driver.Driver, logger *slog.Logger, path string, fp driver.Object) *handle {
	h := &handle{drv: drv, logger: logger, path: path, fp: fp}
	h.refs.Store(1)
	return h
}

// poison is deferred while mu is held.
// A panicking driver call leaves fp in an unknown state, so later calls are refused.
func (h *handle) poison(op string, err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	h.poisoned = true
	h.logger.Error(
		"driver call panicked; file is poisoned",
		slog.String("op", op),
		slog.String("path", h.path),
		slog.Any("panic", rec),
	)
	*err = fserr.Wrap(fserr.Other, fmt.Sprintf("driver panic: %v", rec), fserr.ErrPoisoned)
}

// exclusive runs fn with exclusive access to the driver object.
func (h *handle) exclusive(op string, fn func(fp driver.Object)) (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.poisoned {
		return fserr.Poisoned()
	}
	defer h.poison(op, &err)
	fn(h.fp)
	return nil
}

// tell reads the file pointer under the shared lock.
func (h *handle) tell() (pos uint64, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.poisoned {
		return 0, fserr.Poisoned()
	}
	return h.fp.Tell(), nil
}

func (h *handle) acquire() {
	h.refs.Add(1)
}

// release drops one reference and closes the object when it was the last.
// The object is closed even if the handle is poisoned.
func (h *handle) release() (r driver.Result, err error) {
	if h.refs.Add(-1) > 0 {
		return driver.OK, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	defer h.poison("close", &err)
	r = h.drv.Close(h.fp)
	h.fp = nil
	return r, nil
}
