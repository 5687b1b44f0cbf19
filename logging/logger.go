// Package logging provides the package-level *slog.Logger used across
// pdfkit for structured, injectable logging.
package logging

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// logger holds the package-level logger instance. Defaults to nil,
// which causes Logger() to return a discard logger.
var logger atomic.Pointer[slog.Logger]

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetLogger configures the package-level logger. Pass nil to disable
// logging (falls back to a discard handler).
//
// SetLogger is safe for concurrent use.
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		logger.Store(newDiscardLogger())
	} else {
		logger.Store(sl)
	}
}

// Logger returns the package-level logger, or a discard logger if none
// has been set via SetLogger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = newDiscardLogger()
		logger.Store(l)
	}
	return l
}
