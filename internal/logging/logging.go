package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents logging verbosity
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps a level name to a Level. Unknown names fall back to info.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger is a leveled logger over the standard library log package.
// It is created once by the caller and handed to every component that logs.
type Logger struct {
	level  Level
	out    *log.Logger
	closer io.Closer
}

// New creates a logger writing to w
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level: level,
		out:   log.New(w, "", log.LstdFlags),
	}
}

// OpenFile creates a logger appending to the file at path
func OpenFile(path string, level Level) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	l := New(f, level)
	l.closer = f
	return l, nil
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard, LevelError)
}

// Close releases the underlying file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, "ERROR", format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LevelWarn, "WARN", format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, "INFO", format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LevelDebug, "DEBUG", format, args...)
}

func (l *Logger) printf(level Level, tag, format string, args ...interface{}) {
	if l == nil || l.level < level {
		return
	}
	l.out.Printf("["+tag+"] "+format, args...)
}
