package fserr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"gotest.tools/v3/assert"
)

func TestFromResult(t *testing.T) {
	type testCase struct {
		code     driver.Result
		kind     Kind
		sentinel error
	}
	for _, tc := range []testCase{
		{driver.DiskErr, Other, nil},
		{driver.IntErr, Other, nil},
		{driver.NotReady, Other, nil},
		{driver.NoFile, NotFound, fs.ErrNotExist},
		{driver.NoPath, NotFound, fs.ErrNotExist},
		{driver.InvalidName, InvalidInput, fs.ErrInvalid},
		{driver.Denied, PermissionDenied, fs.ErrPermission},
		{driver.Exist, PermissionDenied, fs.ErrExist},
		{driver.InvalidObject, InvalidInput, fs.ErrInvalid},
		{driver.WriteProtected, PermissionDenied, fs.ErrPermission},
		{driver.InvalidDrive, Other, nil},
		{driver.NotEnabled, Other, nil},
		{driver.NoFilesystem, Other, nil},
		{driver.MkfsAborted, Interrupted, nil},
		{driver.Timeout, TimedOut, os.ErrDeadlineExceeded},
		{driver.Locked, PermissionDenied, fs.ErrPermission},
		{driver.NotEnoughCore, Other, nil},
		{driver.TooManyOpenFiles, Other, nil},
		{driver.InvalidParameter, InvalidInput, fs.ErrInvalid},
		{driver.Result(99), Other, nil},
	} {
		t.Run(tc.code.String(), func(t *testing.T) {
			err := FromResult(tc.code)
			assert.Assert(t, err != nil)
			assert.Equal(t, tc.kind, KindOf(err))
			code, ok := Code(fmt.Errorf("wrapped: %w", err))
			assert.Assert(t, ok)
			assert.Equal(t, tc.code, code)
			if tc.sentinel != nil {
				assert.ErrorIs(t, err, tc.sentinel)
			}
		})
	}
	assert.NilError(t, FromResult(driver.OK))
	assert.Equal(t, "Unknown error", FromResult(driver.Result(99)).Error())
}

func TestErrorIs(t *testing.T) {
	err := &fs.PathError{Op: "seek", Path: "foo", Err: Wrap(InvalidInput, "", ErrInvalidSeek)}
	assert.ErrorIs(t, err, fs.ErrInvalid)
	assert.ErrorIs(t, err, ErrInvalidSeek)
	assert.Assert(t, !errors.Is(err, fs.ErrNotExist))

	assert.ErrorIs(t, NotSupported(), errors.ErrUnsupported)
	assert.ErrorIs(t, Poisoned(), ErrPoisoned)
	assert.Equal(t, Other, KindOf(Poisoned()))
	assert.Equal(t, Other, KindOf(errors.New("plain")))
}
