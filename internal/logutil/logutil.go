// Package logutil holds the process-wide logger.
package logutil

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var (
	logger  = log.NewWithOptions(os.Stderr, log.Options{Prefix: "snapshare", ReportTimestamp: true, Level: log.InfoLevel})
	verbose atomic.Bool
)

// SetVerbose switches between debug and info level.
func SetVerbose(enable bool) {
	verbose.Store(enable)
	if enable {
		logger.SetLevel(log.DebugLevel)
		return
	}
	logger.SetLevel(log.InfoLevel)
}

// Verbose reports whether debug logging is enabled.
func Verbose() bool { return verbose.Load() }

// SetJSON switches to one JSON object per line, for log collectors.
func SetJSON(enable bool) {
	if enable {
		logger.SetFormatter(log.JSONFormatter)
		return
	}
	logger.SetFormatter(log.TextFormatter)
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

// Debugf logs a debug message when verbose logging is enabled.
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

// Infof logs an informational message.
func Infof(format string, args ...any) { logger.Infof(format, args...) }

// Warnf logs a warning, such as a skipped step.
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
