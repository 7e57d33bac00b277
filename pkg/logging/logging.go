// Package logging builds the zap logger used by all port-guardian components.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures logger construction.
type Options struct {
	// Level is one of debug, info, warn or error. Unknown values fall back
	// to info. "warning" is accepted as an alias for warn.
	Level string
	// File, when set, adds a JSON file sink with size-based rotation
	// alongside the console output.
	File string
}

// New builds a logger writing human-readable output to stderr and, when
// opts.File is set, JSON lines to a rotating log file.
func New(opts Options) (*zap.Logger, error) {
	level, known := parseLevel(opts.Level)

	consoleCfg := zap.NewProductionEncoderConfig()
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory '%s': %w", dir, err)
			}
		}

		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5, // MB
			MaxBackups: 5,
			Compress:   true,
		})

		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "ts"
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), w, level))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	if !known {
		logger.Warn("unknown log level, using info", zap.String("log_level", opts.Level))
	}

	return logger, nil
}

func parseLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return zap.DebugLevel, true
	case "", "info":
		return zap.InfoLevel, true
	case "warn", "warning":
		return zap.WarnLevel, true
	case "error":
		return zap.ErrorLevel, true
	default:
		return zap.InfoLevel, false
	}
}
