// Package logger implements a logging adapter using log/slog.
package logger

import (
	"cmp"
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

// attrOrder ranks the error metadata keys shown first, from the tile down to the file.
var attrOrder = []string{"release", "package", "member", "path"}

// messager describes an error that can report its own message without the chain.
// This matches the Message() method provided by zerr.Error.
type messager interface {
	Message() string
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	level    slog.Level
	output   io.Writer
}

// New creates a new Logger instance writing pretty output to stderr.
func New() ports.Logger {
	l := &Logger{
		level:  slog.LevelInfo,
		output: os.Stderr,
	}
	l.rebuild()
	return l
}

// SetOutput updates the logger's output destination.
// If w is nil, os.Stderr is used as the default.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// SetVerbose enables debug-level messages.
func (l *Logger) SetVerbose(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = slog.LevelInfo
	if enable {
		l.level = slog.LevelDebug
	}
	l.rebuild()
}

// rebuild replaces the slog handler. Callers must hold the write lock
// unless the logger is not yet shared.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level}

	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Debug logs a diagnostic message.
func (l *Logger) Debug(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error message with its cause chain.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	attrs := errorAttrs(err)
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	l.logger.Error(formatErrorChain(collectErrorMessages(err)), args...)
}

// collectErrorMessages walks the error chain. zerr errors contribute their own
// message and continue to their cause; the first plain error ends the walk.
// Wrappers that only carry metadata have an empty message and are skipped.
func collectErrorMessages(err error) []string {
	var messages []string
	current := err

	for current != nil {
		m, ok := current.(messager)
		if !ok {
			messages = append(messages, current.Error())
			break
		}
		if msg := m.Message(); msg != "" {
			messages = append(messages, msg)
		}
		current = errors.Unwrap(current)
	}

	return messages
}

// errorAttrs collects the metadata of every zerr error in the chain, following
// joined errors into each branch. The outermost value of a key wins.
func errorAttrs(err error) []slog.Attr {
	seen := make(map[string]bool)
	var attrs []slog.Attr

	var walk func(error)
	walk = func(err error) {
		if z, ok := err.(*zerr.Error); ok {
			meta := z.Metadata()
			for _, key := range slices.Sorted(maps.Keys(meta)) {
				if !seen[key] {
					seen[key] = true
					attrs = append(attrs, slog.Any(key, meta[key]))
				}
			}
		}

		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)

	slices.SortStableFunc(attrs, func(a, b slog.Attr) int {
		return cmp.Or(cmp.Compare(attrRank(a.Key), attrRank(b.Key)), strings.Compare(a.Key, b.Key))
	})
	return attrs
}

func attrRank(key string) int {
	if i := slices.Index(attrOrder, key); i >= 0 {
		return i
	}
	return len(attrOrder)
}

// formatErrorChain renders the main error followed by an indented list of causes.
func formatErrorChain(messages []string) string {
	var formattedLines []string

	for i, msg := range messages {
		lines := strings.Split(msg, "\n")

		if i == 0 {
			formattedLines = append(formattedLines, "Error: "+lines[0])
			for _, line := range lines[1:] {
				formattedLines = append(formattedLines, "       "+line)
			}
			continue
		}

		if i == 1 {
			formattedLines = append(formattedLines, "", "  Caused by:")
		}
		formattedLines = append(formattedLines, "    → "+lines[0])
		for _, line := range lines[1:] {
			formattedLines = append(formattedLines, "      "+line)
		}
	}

	return strings.Join(formattedLines, "\n")
}

// Configure applies output format and verbosity to l if it supports runtime
// configuration. Other loggers are left unchanged.
func Configure(l ports.Logger, w io.Writer, jsonMode, verbose bool) {
	cl, ok := l.(*Logger)
	if !ok {
		return
	}
	cl.SetOutput(w)
	cl.SetJSON(jsonMode)
	cl.SetVerbose(verbose)
}
