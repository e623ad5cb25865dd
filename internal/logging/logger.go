// Package logging builds the zap logger used across harmonizer.
//
// Diagnostics go to stderr so that JSON reports written to stdout stay
// machine-readable. An optional log file receives JSON-encoded entries at
// debug level regardless of verbosity.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Out receives console output. Defaults to os.Stderr.
	Out     io.Writer
	Verbose bool
	// File, when set, is opened in append mode for JSON output.
	File string
}

// New creates a logger and a close function that syncs it and releases the
// log file.
func New(opts Options) (*zap.Logger, func() error, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zapcore.WarnLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder("console"), zapcore.AddSync(out), level),
	}

	var file *os.File
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(newEncoder("json"), zapcore.AddSync(f), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		cfg.TimeKey = ""
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}
