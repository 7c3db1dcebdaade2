package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/ngicks/go-fsys-helper/drvfs"
)

type command struct {
	synopsis string
	run      func(e *env, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"cat":      {"cat path...: print files", cat},
		"chmod":    {"chmod mode path...: set or clear the read-only attribute", chmod},
		"cp":       {"cp src dst: copy a file", cp},
		"ls":       {"ls [-l] [path...]: list directories", ls},
		"mkdir":    {"mkdir [-p] path...: create directories", mkdir},
		"mv":       {"mv old new: rename", mv},
		"pwd":      {"pwd: print the current directory", pwd},
		"realpath": {"realpath path...: print absolute paths", realpath},
		"rm":       {"rm path...: remove files", rm},
		"rmdir":    {"rmdir path...: remove empty directories", rmdir},
		"rmtree":   {"rmtree path...: remove directories recursively", rmtree},
		"stat":     {"stat path...: print attributes", stat},
		"write":    {"write [-a] path: write stdin to a file", write},
	}
}

func parse(name string, e *env, args []string, minArgs, maxArgs int, setup func(flags *flag.FlagSet)) ([]string, error) {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.SetOutput(e.stderr)
	if setup != nil {
		setup(set)
	}
	if err := set.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	n := set.NArg()
	if n < minArgs || (maxArgs >= 0 && n > maxArgs) {
		return nil, fmt.Errorf("%w: %s", errUsage, commands[name].synopsis)
	}
	return set.Args(), nil
}

func eachPath(e *env, paths []string, fn func(p string) error) error {
	var errs []error
	for _, p := range paths {
		if err := e.ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := fn(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func cat(e *env, args []string) error {
	paths, err := parse("cat", e, args, 1, -1, nil)
	if err != nil {
		return err
	}
	return eachPath(e, paths, func(p string) error {
		f, err := e.fsys.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(e.stdout, f)
		return errors.Join(err, f.Close())
	})
}

func write(e *env, args []string) error {
	var appendMode bool
	paths, err := parse("write", e, args, 1, 1, func(flags *flag.FlagSet) {
		flags.BoolVar(&appendMode, "a", false, "append instead of truncating")
	})
	if err != nil {
		return err
	}
	oflag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		oflag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := e.fsys.OpenFile(paths[0], oflag, 0o666)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, e.stdin)
	if err == nil {
		err = f.Sync()
	}
	return errors.Join(err, f.Close())
}

func cp(e *env, args []string) error {
	paths, err := parse("cp", e, args, 2, 2, nil)
	if err != nil {
		return err
	}
	n, err := e.fsys.Copy(paths[0], paths[1])
	if err != nil {
		return err
	}
	e.logger.Debug("copied", "from", paths[0], "to", paths[1], "bytes", n)
	return nil
}

func mv(e *env, args []string) error {
	paths, err := parse("mv", e, args, 2, 2, nil)
	if err != nil {
		return err
	}
	return e.fsys.Rename(paths[0], paths[1])
}

func rm(e *env, args []string) error {
	paths, err := parse("rm", e, args, 1, -1, nil)
	if err != nil {
		return err
	}
	return eachPath(e, paths, e.fsys.Remove)
}

func rmdir(e *env, args []string) error {
	paths, err := parse("rmdir", e, args, 1, -1, nil)
	if err != nil {
		return err
	}
	return eachPath(e, paths, e.fsys.RemoveDir)
}

func rmtree(e *env, args []string) error {
	paths, err := parse("rmtree", e, args, 1, -1, nil)
	if err != nil {
		return err
	}
	return eachPath(e, paths, e.fsys.RemoveAll)
}

func mkdir(e *env, args []string) error {
	var parents bool
	paths, err := parse("mkdir", e, args, 1, -1, func(flags *flag.FlagSet) {
		flags.BoolVar(&parents, "p", false, "create parents as needed")
	})
	if err != nil {
		return err
	}
	return eachPath(e, paths, func(p string) error {
		if parents {
			return e.fsys.MkdirAll(p, fs.ModePerm)
		}
		return e.fsys.Mkdir(p, fs.ModePerm)
	})
}

func chmod(e *env, args []string) error {
	paths, err := parse("chmod", e, args, 2, -1, nil)
	if err != nil {
		return err
	}
	mode, err := strconv.ParseUint(paths[0], 8, 32)
	if err != nil {
		return fmt.Errorf("%w: mode %q: %w", errUsage, paths[0], err)
	}
	return eachPath(e, paths[1:], func(p string) error {
		return e.fsys.Chmod(p, fs.FileMode(mode))
	})
}

func pwd(e *env, args []string) error {
	if _, err := parse("pwd", e, args, 0, 0, nil); err != nil {
		return err
	}
	wd, err := e.fsys.Getwd()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, wd)
	return err
}

func realpath(e *env, args []string) error {
	paths, err := parse("realpath", e, args, 1, -1, nil)
	if err != nil {
		return err
	}
	return eachPath(e, paths, func(p string) error {
		if !path.IsAbs(p) {
			p = "./" + p
		}
		abs, err := e.fsys.Canonicalize(p)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(e.stdout, abs)
		return err
	})
}

func stat(e *env, args []string) error {
	paths, err := parse("stat", e, args, 1, -1, nil)
	if err != nil {
		return err
	}
	return eachPath(e, paths, func(p string) error {
		a, err := e.fsys.Metadata(p)
		if err != nil {
			return err
		}
		kind := "file"
		if a.FileType().IsDir() {
			kind = "directory"
		}
		_, err = fmt.Fprintf(
			e.stdout,
			"%s: type=%s size=%d mode=%s readonly=%t modified=%s\n",
			p, kind, a.Size(), a.Mode(), a.Permissions().ReadOnly(), a.Modified().Time().UTC().Format(time.RFC3339),
		)
		return err
	})
}

func ls(e *env, args []string) error {
	var long bool
	paths, err := parse("ls", e, args, 0, -1, func(flags *flag.FlagSet) {
		flags.BoolVar(&long, "l", false, "long listing")
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return eachPath(e, paths, func(p string) error {
		if len(paths) > 1 {
			fmt.Fprintf(e.stdout, "%s:\n", p)
		}
		cur, err := e.fsys.ReadDir(p)
		if err != nil {
			return err
		}
		return errors.Join(list(e, cur, long), cur.Close())
	})
}

func list(e *env, cur *drvfs.DirCursor, long bool) error {
	for ent, err := range cur.All() {
		if err != nil {
			return err
		}
		name := ent.Name()
		if ent.IsDir() {
			name += "/"
		}
		if !long {
			fmt.Fprintln(e.stdout, name)
			continue
		}
		info, _ := ent.Info()
		fmt.Fprintf(
			e.stdout,
			"%s %10d %s %s\n",
			info.Mode(), info.Size(), info.ModTime().UTC().Format(time.RFC3339), name,
		)
	}
	return nil
}
