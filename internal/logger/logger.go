// Package logger holds the structured logger shared by the raycam packages.
// By default nothing is logged; the CLI installs a real handler at startup.
package logger

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. Enabled reports
// false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Tasks may run on a build goroutine
// while the CLI swaps loggers, so access is atomic.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger replaces the logger used by all raycam packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// SetLogger is safe for concurrent use.
//
// Log levels used by raycam:
//   - [slog.LevelDebug]: per-task progress (contour layer hit counts,
//     clearing phases and completed layers, per-task keypoint totals)
//   - [slog.LevelInfo]: job lifecycle (job built, CLI build start with
//     mesh size and task count)
//   - [slog.LevelWarn]: non-fatal issues (clearing stopped at max_phases,
//     STL facets skipped during import)
//
// Example:
//
//	logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: logger.ParseLevel("debug"),
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. The geometry-facing packages (engine,
// job) call it at log time so a logger installed after a task was
// constructed still takes effect.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a
// slog level. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
