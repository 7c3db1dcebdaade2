package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

type cli struct {
	root   string
	config string
	log    string
}

func newCLI(t *testing.T, extra string) cli {
	t.Helper()
	root := filepath.Join(t.TempDir(), "volume")
	assert.NilError(t, os.Mkdir(root, fs.ModePerm))
	return newCLIAt(t, root, extra)
}

// newCLIAt configures a command over an existing volume root.
func newCLIAt(t *testing.T, root, extra string) cli {
	t.Helper()
	dir := t.TempDir()
	c := cli{
		root:   root,
		config: filepath.Join(dir, "config.yaml"),
		log:    filepath.Join(dir, "drvfs.log"),
	}
	content := fmt.Sprintf(`logging:
  level: debug
  format: json
  output: %s
backend:
  type: os
  root: %s
%s`, c.log, c.root, extra)
	assert.NilError(t, os.WriteFile(c.config, []byte(content), 0o644))
	return c
}

func (c cli) run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	err = run(
		context.Background(),
		append([]string{"-config", c.config}, args...),
		strings.NewReader(stdin),
		&outBuf,
		&errBuf,
	)
	return outBuf.String(), errBuf.String(), err
}

func (c cli) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, stderr, err := c.run(t, stdin, args...)
	assert.NilError(t, err, "stderr: %s", stderr)
	return out
}

func TestRun(t *testing.T) {
	c := newCLI(t, "")

	c.mustRun(t, "", "mkdir", "-p", "a/b")
	c.mustRun(t, "hello", "write", "a/b/f.txt")
	c.mustRun(t, " world", "write", "-a", "a/b/f.txt")
	assert.Equal(t, "hello world", c.mustRun(t, "", "cat", "a/b/f.txt"))

	host, err := os.ReadFile(filepath.Join(c.root, "a", "b", "f.txt"))
	assert.NilError(t, err)
	assert.Equal(t, "hello world", string(host))

	c.mustRun(t, "", "cp", "a/b/f.txt", "a/g.txt")
	c.mustRun(t, "", "mv", "a/g.txt", "a/h.txt")
	assert.Equal(t, "b/\nh.txt\n", c.mustRun(t, "", "ls", "a"))

	long := c.mustRun(t, "", "ls", "-l", "a")
	assert.Assert(t, strings.Contains(long, "-rw-rw-rw-         11 "), long)
	assert.Assert(t, strings.HasSuffix(long, " h.txt\n"), long)

	st := c.mustRun(t, "", "stat", "a/h.txt", "a")
	assert.Assert(t, strings.Contains(st, "a/h.txt: type=file size=11 mode=-rw-rw-rw- readonly=false"), st)
	assert.Assert(t, strings.Contains(st, "a: type=directory"), st)

	c.mustRun(t, "", "chmod", "444", "a/h.txt")
	_, _, err = c.run(t, "x", "write", "a/h.txt")
	assert.ErrorIs(t, err, fs.ErrPermission)
	_, _, err = c.run(t, "", "rm", "a/h.txt")
	assert.ErrorIs(t, err, fs.ErrPermission)
	c.mustRun(t, "", "chmod", "666", "a/h.txt")
	c.mustRun(t, "", "rm", "a/h.txt")

	_, _, err = c.run(t, "", "rmdir", "a")
	assert.ErrorIs(t, err, fs.ErrPermission)
	c.mustRun(t, "", "rmtree", "a")
	_, err = os.Stat(filepath.Join(c.root, "a"))
	assert.Assert(t, os.IsNotExist(err))

	log, err := os.ReadFile(c.log)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(log), `"msg":"removed"`), string(log))
}

func TestRun_Workdir(t *testing.T) {
	c := newCLI(t, "")
	c.mustRun(t, "", "mkdir", "-p", "/x/y")

	w := newCLIAt(t, c.root, "workdir: /x\n")
	assert.Equal(t, "/x\n", w.mustRun(t, "", "pwd"))
	assert.Equal(t, "/x/y\n/x\n/z\n", w.mustRun(t, "", "realpath", "y", "y/..", "/z"))
	assert.Equal(t, "y/\n", w.mustRun(t, "", "ls"))

	missing := newCLIAt(t, c.root, "workdir: /nope\n")
	_, _, err := missing.run(t, "", "pwd")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRun_Metrics(t *testing.T) {
	c := newCLI(t, "metrics:\n  enabled: true\n")
	_, stderr, err := c.run(t, "abc", "write", "m.txt")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(stderr, "# TYPE drvfs_driver_calls_total counter"), stderr)
	assert.Assert(t, strings.Contains(stderr, `drvfs_driver_bytes_total{direction="write"} 3`), stderr)
}

func TestRun_Usage(t *testing.T) {
	c := newCLI(t, "")
	for _, args := range [][]string{
		{},
		{"nope"},
		{"cp", "only-one"},
		{"chmod", "rw", "a"},
		{"pwd", "extra"},
	} {
		_, _, err := c.run(t, "", args...)
		assert.ErrorIs(t, err, errUsage, "args: %v", args)
	}

	_, stderr, err := c.run(t, "", "-h")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(stderr, "rmtree"), stderr)
}

func TestRun_Errors(t *testing.T) {
	c := newCLI(t, "")
	_, _, err := c.run(t, "", "cat", "missing.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, _, err = c.run(t, "", "mkdir", "a/b")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	bad := newCLI(t, "")
	assert.NilError(t, os.RemoveAll(bad.root))
	_, _, err = bad.run(t, "", "pwd")
	assert.ErrorContains(t, err, "backend root")
}

func TestRun_MemoryBackend(t *testing.T) {
	c := cli{config: filepath.Join(t.TempDir(), "config.toml")}
	assert.NilError(t, os.WriteFile(c.config, []byte("[backend]\ntype = \"memory\"\n"), 0o644))

	assert.Equal(t, "/\n", c.mustRun(t, "", "pwd"))
	c.mustRun(t, "hello", "write", "a.txt")
	_, _, err := c.run(t, "", "cat", "a.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist, "each run starts from an empty volume")
}
