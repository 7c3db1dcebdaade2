package config

import (
	"io"
	"log/slog"
	"os"
)

func (c LoggingConfig) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewLogger builds the logger c describes.
// The returned close func releases the log file, if any.
func (c LoggingConfig) NewLogger() (logger *slog.Logger, closeFn func() error, err error) {
	var w io.Writer
	closeFn = func() error { return nil }
	switch c.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(c.Output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = f.Close
	}

	opts := &slog.HandlerOptions{Level: c.level()}
	var handler slog.Handler
	if c.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closeFn, nil
}
