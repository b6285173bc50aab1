// Package logging provides structured logging for ctharvester builds.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Level aliases for slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps slog.Logger with ctharvester-specific file lifecycle.
type Logger struct {
	*slog.Logger
	file     *os.File
	filePath string
}

// Setup creates a logger that writes structured text records to a
// timestamped log file under logDir, mirrored to stderr when verbose.
// Returns nil, nil if noLog is true (logging disabled entirely).
func Setup(logDir string, verbose, noLog bool) (*Logger, error) {
	if noLog {
		return nil, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("ctharvester_build_%s.log", timestamp)
	filePath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	var output io.Writer = file
	if verbose {
		output = io.MultiWriter(file, os.Stderr)
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})

	l := &Logger{
		Logger:   slog.New(handler),
		file:     file,
		filePath: filePath,
	}

	l.Info("ctharvester build starting", "log_file", filePath)
	if verbose {
		l.Debug("debug level logging enabled")
	}

	return l, nil
}

// Close closes the underlying log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path to the log file, or "" if logging is disabled.
func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Info logs an info-level message. Safe to call on a nil Logger.
func (l *Logger) Info(msg string, args ...any) {
	if l == nil {
		return
	}
	l.Logger.Info(msg, args...)
}

// Debug logs a debug-level message. Safe to call on a nil Logger.
func (l *Logger) Debug(msg string, args ...any) {
	if l == nil {
		return
	}
	l.Logger.Debug(msg, args...)
}

// Warn logs a warning message. Safe to call on a nil Logger.
func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		return
	}
	l.Logger.Warn(msg, args...)
}

// Error logs an error message. Safe to call on a nil Logger.
func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		return
	}
	l.Logger.Error(msg, args...)
}
