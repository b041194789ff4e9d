// Package logging configures the charmbracelet/log loggers used by mdsite.
// Build progress goes to a leveled logger carried in the context; commands
// that talk to the user directly use an interactive logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide logger shared by all commands.
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

func getDefaultLogger() *log.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = New("info")
	})
	return defaultLogger
}

// New creates a stderr logger at the given level.
func New(level string) *log.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter creates a logger writing to w. Valid levels are "debug",
// "info", "warn" (or "warning") and "error"; anything else means info.
func NewWriter(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Level:           ParseLevel(level),
	})
}

// ParseLevel maps a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	if strings.EqualFold(level, "warning") {
		return log.WarnLevel
	}
	parsed, err := log.ParseLevel(level)
	if err != nil || parsed == log.FatalLevel {
		return log.InfoLevel
	}
	return parsed
}

// NewInteractive creates the logger init and config use to talk to the
// user. Info messages carry no level prefix so they read like plain
// command output; warnings and errors keep theirs.
func NewInteractive(w io.Writer) *log.Logger {
	logger := NewWriter(w, "info")

	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].SetString("")
	logger.SetStyles(styles)

	return logger
}

// Default returns the process-wide build logger.
func Default() *log.Logger {
	return getDefaultLogger()
}

// SetDefault replaces the process-wide build logger.
func SetDefault(logger *log.Logger) {
	getDefaultLogger()
	defaultLogger = logger
}

// SetLevel changes the level of the process-wide build logger. --debug
// uses it before any command runs.
func SetLevel(level string) {
	getDefaultLogger().SetLevel(ParseLevel(level))
}
