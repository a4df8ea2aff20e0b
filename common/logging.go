// Package common provides logging setup and build metadata shared by the
// ec2ssh commands.
package common

import (
	"log/slog"
	"os"
)

// LoggingOpts configures the process-wide logger.
type LoggingOpts struct {
	// Debug enables debug-level messages.
	Debug bool

	// JSON switches to JSON output instead of text.
	JSON bool

	// Service is added as a "service" attribute to all messages.
	Service string

	// Version is added as a "version" attribute to all messages.
	Version string
}

// SetupLogger returns a structured logger writing to stderr. Stdout is
// never written to: this tool is used as an rsync transport and must stay
// byte-transparent on its standard output.
func SetupLogger(opts *LoggingOpts) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	if opts.Version != "" {
		logger = logger.With("version", opts.Version)
	}
	return logger
}
