// Package logging provides structured logging for roster.
// It wraps Go's log/slog package to write JSON-formatted logs to a file,
// because the terminal belongs to the UI while roster is running.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// LogFileName is the name of the active log file inside the log directory.
const LogFileName = "roster.log"

// Logger provides structured logging with persistent attributes.
// It is safe for concurrent use; child loggers share the parent's writer.
type Logger struct {
	logger *slog.Logger
	out    *output
	attrs  []slog.Attr
}

// output owns the closable destination shared by a logger and its children.
type output struct {
	mu     sync.Mutex
	closer io.Closer
}

func (o *output) close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closer == nil {
		return nil
	}
	err := o.closer.Close()
	o.closer = nil
	return err
}

// NewLogger creates a Logger that appends JSON lines to {dir}/roster.log
// without rotation. If dir is empty, logs are written to stderr.
func NewLogger(dir string, level string) (*Logger, error) {
	if dir == "" {
		return newLogger(os.Stderr, nil, level), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(file, file, level), nil
}

// NewLoggerWithRotation creates a Logger writing to {dir}/roster.log through
// a RotatingWriter configured by rc.
func NewLoggerWithRotation(dir string, level string, rc RotationConfig) (*Logger, error) {
	if dir == "" {
		return nil, fmt.Errorf("log directory is required for rotation")
	}
	rw, err := NewRotatingWriter(filepath.Join(dir, LogFileName), rc)
	if err != nil {
		return nil, err
	}
	return newLogger(rw, rw, level), nil
}

// NewWriterLogger creates a Logger writing JSON lines to w. Closing the
// logger does not close w.
func NewWriterLogger(w io.Writer, level string) *Logger {
	return newLogger(w, nil, level)
}

func newLogger(w io.Writer, closer io.Closer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return &Logger{
		logger: slog.New(handler),
		out:    &output{closer: closer},
		attrs:  make([]slog.Attr, 0),
	}
}

// parseLevel converts a string log level to slog.Level.
// Defaults to INFO if the level string is not recognized.
func parseLevel(level string) slog.Level {
	switch ParseLevel(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a child Logger tagged with the emitting component
// ("controller", "source", "tui", ...).
func (l *Logger) WithComponent(component string) *Logger {
	return l.withAttr(slog.String("component", component))
}

// WithOperation returns a child Logger tagged with a controller operation
// ("initialize", "refresh", "add_one").
func (l *Logger) WithOperation(op string) *Logger {
	return l.withAttr(slog.String("operation", op))
}

// With returns a new Logger with arbitrary key-value attributes.
// Keys and values are provided as alternating arguments; non-string keys
// are skipped.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}

	newAttrs := make([]slog.Attr, 0, len(l.attrs)+len(args)/2)
	newAttrs = append(newAttrs, l.attrs...)
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		newAttrs = append(newAttrs, slog.Any(key, args[i+1]))
	}
	return &Logger{logger: l.logger, out: l.out, attrs: newAttrs}
}

func (l *Logger) withAttr(attr slog.Attr) *Logger {
	newAttrs := make([]slog.Attr, len(l.attrs)+1)
	copy(newAttrs, l.attrs)
	newAttrs[len(l.attrs)] = attr
	return &Logger{logger: l.logger, out: l.out, attrs: newAttrs}
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs a message at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs a message at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs a message at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	allArgs := make([]any, 0, len(l.attrs)*2+len(args))
	for _, attr := range l.attrs {
		allArgs = append(allArgs, attr.Key, attr.Value.Any())
	}
	allArgs = append(allArgs, args...)

	l.logger.Log(context.Background(), level, msg, allArgs...)
}

// Close flushes and closes the log destination. Closing any logger in a
// family closes the shared destination; subsequent closes are no-ops.
func (l *Logger) Close() error {
	if err := l.out.close(); err != nil {
		return fmt.Errorf("failed to close log output: %w", err)
	}
	return nil
}

// NopLogger returns a Logger that discards all log output.
// Useful for testing or when logging is disabled.
func NopLogger() *Logger {
	return newLogger(io.Discard, nil, LevelError)
}

// ParseLevel normalizes a user-provided level string.
// Returns LevelInfo if the level string is not recognized.
func ParseLevel(level string) string {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
