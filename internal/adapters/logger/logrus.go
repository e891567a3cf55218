package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how much the logger writes.
type Config struct {
	Level      LogLevel
	Output     io.Writer // Console writer; defaults to os.Stderr
	File       string    // Optional rotating log file
	MaxSizeMB  int
	MaxBackups int
	JSON       bool
}

// LogrusLogger implements the ports.Logger interface on top of logrus.
type LogrusLogger struct {
	entry *logrus.Logger
	level LogLevel
	file  *lumberjack.Logger
}

// New creates a logrus-backed logger. When cfg.File is set, output is duplicated
// into a size-rotated file.
func New(cfg Config) *LogrusLogger {
	l := logrus.New()
	l.SetLevel(cfg.Level.logrusLevel())
	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006/01/02 15:04:05.000000",
			DisableColors:   true,
		})
	}

	console := cfg.Output
	if console == nil {
		console = os.Stderr
	}

	out := &LogrusLogger{entry: l, level: cfg.Level}
	if cfg.File == "" {
		l.SetOutput(console)
		return out
	}

	// lumberjack creates the file lazily, the directory must exist.
	_ = os.MkdirAll(filepath.Dir(cfg.File), 0755)
	out.file = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(console, out.file))
	return out
}

// Level returns the configured threshold.
func (l *LogrusLogger) Level() LogLevel {
	return l.level
}

// Close releases the rotating file, if any.
func (l *LogrusLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *LogrusLogger) with(ctx context.Context, err error, fields []map[string]interface{}) *logrus.Entry {
	e := logrus.NewEntry(l.entry)
	if ctx != nil {
		e = e.WithContext(ctx)
	}
	if len(fields) > 0 && fields[0] != nil {
		e = e.WithFields(logrus.Fields(fields[0]))
	}
	if err != nil {
		e = e.WithError(err)
	}
	return e
}

// Debug logs a message at Debug level.
func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.with(ctx, nil, fields).Debug(msg)
}

// Info logs a message at Info level.
func (l *LogrusLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.with(ctx, nil, fields).Info(msg)
}

// Warn logs a message at Warning level.
func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.with(ctx, nil, fields).Warn(msg)
}

// Error logs an error message at Error level.
func (l *LogrusLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.with(ctx, err, fields).Error(msg)
}
