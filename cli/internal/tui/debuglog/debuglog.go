// ABOUTME: File-backed structured logger for the TUI
// ABOUTME: Keeps log output off the terminal while the full-screen program runs

package debuglog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	logFile *os.File
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	mu      sync.Mutex
)

// Init starts logging to debug.log in configDir.
// If configDir is empty, logging is disabled.
func Init(configDir string, level slog.Level) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	if configDir == "" {
		return nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(configDir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	logFile = f
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

// SetOutput sends log records to w, mainly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Close closes the log file and disables logging
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Debug logs a debug record
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs an info record
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs a warning record
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs err with context. A nil err is not logged.
func Error(context string, err error, args ...any) {
	if err == nil {
		return
	}
	current().Error(context, append([]any{"error", err}, args...)...)
}
