// Package logging builds the zap logger shared by every sweep command.
//
// The review TUI owns the terminal, so logs go to a file rather than
// stdout. Level usage:
//   - error: store transport failures, server 5xx responses
//   - warn:  store refusals, background paging halted
//   - info:  deletions committed or undone, edits applied, server requests
//   - debug: page loads, cursor reconciliation, scheduler transitions
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the destination and minimum level.
type Options struct {
	// Path is the log file. Empty disables logging. "stderr" and "stdout"
	// are accepted for `sweep serve`.
	Path string
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
}

// New creates a JSON zap.Logger writing to opts.Path.
func New(opts Options) (*zap.Logger, error) {
	if opts.Path == "" {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	if opts.Path != "stdout" && opts.Path != "stderr" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	zapCfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Encoding:    "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{opts.Path},
		ErrorOutputPaths: []string{opts.Path},
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
