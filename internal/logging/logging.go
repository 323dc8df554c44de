// Package logging builds the zap logger used by the server and the CLI.
//
// Console output always goes to stderr: stdout carries the MCP protocol and
// must never receive log lines. When a log file is configured, entries are
// also written there as JSON and the file is rotated by lumberjack.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Field names shared by the console and JSON encoders.
const (
	FieldTimestamp = "timestamp"
	FieldLevel     = "level"
	FieldSource    = "source"
	FieldMessage   = "message"
	FieldCaller    = "caller"
)

// File rotation defaults.
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 14
)

// ParseLevel parses a level name (debug, info, warn/warning, error).
// Matching is case-insensitive.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger creates a logger writing human-readable lines to stderr and,
// when filePath is not empty, JSON lines to a rotated file.
func NewLogger(level, filePath string) (*zap.Logger, error) {
	return newLogger(level, filePath, os.Stderr)
}

func newLogger(level, filePath string, console io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig()),
			zapcore.Lock(zapcore.AddSync(console)),
			lvl,
		),
	}
	if filePath != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(jsonEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   filePath,
				MaxSize:    DefaultMaxSizeMB,
				MaxBackups: DefaultMaxBackups,
				MaxAge:     DefaultMaxAgeDays,
				Compress:   true,
			}),
			lvl,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        FieldTimestamp,
		LevelKey:       FieldLevel,
		NameKey:        FieldSource,
		CallerKey:      FieldCaller,
		MessageKey:     FieldMessage,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := jsonEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}
