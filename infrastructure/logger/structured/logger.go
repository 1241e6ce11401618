// ABOUTME: Structured logger implementation backed by logrus
// ABOUTME: Supports JSON or text output, level filtering and rotating log files via lumberjack

package structured

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger
type Options struct {
	// Level is one of debug, info, warn, error
	Level string

	// Format is "json" or "text"
	Format string

	// File, when set, receives the log through a rotating writer
	File string

	// Output overrides stdout; mostly for tests
	Output io.Writer
}

// Logger implements the Logger interface using logrus
type Logger struct {
	entry *logrus.Logger
}

// New creates a logger from options
func New(opts Options) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(opts.Format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.File != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    500, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	l.SetOutput(out)

	return &Logger{entry: l}
}

// Quiet returns a logger that discards everything
func Quiet() *Logger {
	return New(Options{Level: "panic", Output: io.Discard})
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}

// Logrus exposes the underlying logger for libraries that want one
func (l *Logger) Logrus() *logrus.Logger {
	return l.entry
}
