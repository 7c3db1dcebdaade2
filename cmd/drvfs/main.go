// Command drvfs runs file utilities on a FatFs-style driver backed by a host directory
// or by memory.
//
//	drvfs [-config path] <command> [args...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/ngicks/go-fsys-helper/drvfs"
	"github.com/ngicks/go-fsys-helper/drvfs/aferodrv"
	"github.com/ngicks/go-fsys-helper/drvfs/driver"
	"github.com/ngicks/go-fsys-helper/drvfs/drvmetrics"
	"github.com/ngicks/go-fsys-helper/drvfs/internal/config"
	"github.com/ngicks/go-fsys-helper/drvfs/memdrv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "drvfs: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

type env struct {
	ctx    context.Context
	fsys   *drvfs.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func usage(w io.Writer, flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(w, "usage: drvfs [-config path] <command> [args...]\n\ncommands:\n")
		for _, name := range slices.Sorted(maps.Keys(commands)) {
			fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].synopsis)
		}
		fmt.Fprintf(w, "\nflags:\n")
		flags.PrintDefaults()
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	flags := flag.NewFlagSet("drvfs", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "config file path. defaults to config.yaml under the user config directory.")
	flags.Usage = usage(stderr, flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("%w: no command", errUsage)
	}
	cmd, ok := commands[flags.Arg(0)]
	if !ok {
		flags.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, flags.Arg(0))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, closeLog, err := cfg.Logging.NewLogger()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeLog())
	}()

	drv, err := newDriver(cfg.Backend)
	if err != nil {
		return err
	}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		drv = drvmetrics.New(drv, reg)
	}
	fsys := drvfs.New(drv, drvfs.WithLogger(logger))
	if cfg.Workdir != "" {
		if err := fsys.Chdir(cfg.Workdir); err != nil {
			return err
		}
	}

	logger.Debug("running", slog.String("command", flags.Arg(0)), slog.String("backend", cfg.Backend.Type))
	err = cmd.run(&env{
		ctx:    ctx,
		fsys:   fsys,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}, flags.Args()[1:])

	if reg != nil {
		err = errors.Join(err, writeMetrics(stderr, reg))
	}
	return err
}

func newDriver(cfg config.BackendConfig) (driver.Driver, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory":
		return memdrv.New(), nil
	case "os":
		info, err := os.Stat(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("backend root: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("backend root %q is not a directory", cfg.Root)
		}
		return aferodrv.New(afero.NewBasePathFs(afero.NewOsFs(), cfg.Root)), nil
	}
	return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
}

func writeMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
