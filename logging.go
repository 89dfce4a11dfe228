package rtaccel

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// LogConfig selects where a DefaultLogger writes. Console output goes to
// Output, or stdout when Output is nil.
type LogConfig struct {
	Prefix  string
	Debug   bool
	Console bool
	Output  io.Writer
	File    FileConfig
}

// DefaultLogger is a zap backed Logger whose debug switch can be flipped at
// runtime.
type DefaultLogger struct {
	level zap.AtomicLevel
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLogger(LogConfig{Prefix: prefix, Debug: debug, Console: true})
}

func NewLogger(cfg LogConfig) *DefaultLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	var cores []zapcore.Core

	if cfg.Console {
		out := cfg.Output
		if out == nil {
			out = os.Stdout
		}
		consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			NameKey:          "logger",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeName:       zapcore.FullNameEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(out), level))
	}

	if cfg.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
			LocalTime:  true,
		}
		fileEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			NameKey:          "logger",
			MessageKey:       "msg",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeName:       zapcore.FullNameEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), level))
	}

	base := zap.New(zapcore.NewTee(cores...))
	if cfg.Prefix != "" {
		base = base.Named(cfg.Prefix)
	}
	return &DefaultLogger{level: level, base: base, sugar: base.Sugar()}
}

// ParseLevel reports whether a config level string enables debug output.
func ParseLevel(level string) bool {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return false
	}
	return lvl <= zapcore.DebugLevel
}

func (l *DefaultLogger) DebugEnabled() bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	if enabled {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

// Sync flushes any buffered log entries.
func (l *DefaultLogger) Sync() error {
	return l.base.Sync()
}

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
