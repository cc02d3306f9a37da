package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	prefix = "AvaloniaMCP"

	// DebugEnv switches the default logger to a debug log file in the
	// working directory.
	DebugEnv = "DEBUG"

	debugLogFile = "avaloniamcp.log"
)

// AppLogger wraps a charmbracelet logger. Stdout belongs to the MCP
// transport, so nothing here ever writes to it.
type AppLogger struct {
	logger *log.Logger
	debug  bool
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetDefault returns the process wide logger, built on first use.
func GetDefault() *AppLogger {
	once.Do(func() {
		defaultLogger = NewAppLogger()
	})
	return defaultLogger
}

// Error logs through the default logger
func Error(msg string, keyvals ...interface{}) {
	GetDefault().Error(msg, keyvals...)
}

// Debug logs through the default logger
func Debug(msg string, keyvals ...interface{}) {
	GetDefault().Debug(msg, keyvals...)
}

// NewAppLogger builds the default logger. With DEBUG set it truncates and
// writes avaloniamcp.log at debug level; otherwise only warnings and errors
// reach stderr.
func NewAppLogger() *AppLogger {
	if os.Getenv(DebugEnv) == "" {
		return newLogger(os.Stderr, log.WarnLevel, log.Options{TimeFormat: time.RFC3339})
	}

	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current working directory: %v", err))
	}
	logPath := filepath.Join(cwd, debugLogFile)

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		panic(fmt.Sprintf("Failed to create debug log file: %v", err))
	}

	al := newLogger(logFile, log.DebugLevel, log.Options{ReportCaller: true, TimeFormat: time.Kitchen})
	al.Info("Debug logging enabled", "log_file", logPath)
	return al
}

// NewWriterLogger creates a logger writing to w at the given level. The CLI
// passes stderr here when run with --verbose.
func NewWriterLogger(w io.Writer, level log.Level) *AppLogger {
	return newLogger(w, level, log.Options{TimeFormat: time.Kitchen})
}

// NewTestLogger returns a debug logger and the buffer it writes to.
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return newLogger(&buf, log.DebugLevel, log.Options{}), &buf
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *AppLogger {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	logger.SetLevel(log.FatalLevel)
	return &AppLogger{logger: logger}
}

func newLogger(w io.Writer, level log.Level, opts log.Options) *AppLogger {
	opts.Prefix = prefix
	opts.ReportTimestamp = opts.TimeFormat != ""

	logger := log.NewWithOptions(w, opts)
	logger.SetLevel(level)
	return &AppLogger{
		logger: logger,
		debug:  level <= log.DebugLevel,
	}
}

func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// LogPerformance records how long operation took since start (debug only)
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.debug {
		al.logger.Debug("Performance", "operation", operation, "duration", time.Since(start))
	}
}

// LogCacheEvent records hit/miss/evict/expire decisions (debug only)
func (al *AppLogger) LogCacheEvent(event, key string) {
	if al.debug {
		al.logger.Debug("Cache event", "event", event, "key", key)
	}
}
