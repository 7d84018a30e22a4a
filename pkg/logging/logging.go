// Package logging builds the zap logger used by procspot.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and sinks of the logger.
type Options struct {
	Level string
	// File, when set, receives a rotated copy of every entry.
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	// Console defaults to stderr.
	Console io.Writer
}

// New returns a logger writing to the console and, optionally, a rotated file.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(opts.Console), level),
	}
	if opts.File != "" {
		if opts.MaxSize <= 0 {
			opts.MaxSize = 2
		}
		if opts.MaxBackups <= 0 {
			opts.MaxBackups = 10
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		})
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, fileWriter, level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
