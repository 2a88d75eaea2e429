package atlaskit

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Render threads of different backends
// log concurrently, so access is atomic.
var loggerPtr atomic.Pointer[slog.Logger]

// debugMode gates per-frame diagnostics such as DrawList skip reports.
var debugMode atomic.Bool

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by atlaskit and its backend packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: uploads, rebuilds, unresolved handles
//   - [slog.LevelInfo]: backend registration, overflow atlas creation
//   - [slog.LevelWarn]: failed uploads, resource release problems
//
// Example:
//
//	atlaskit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Backend packages call this so they share
// one configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// SetDebugMode enables or disables per-frame diagnostics. When enabled,
// DrawList.Build logs skipped handles and LogStats reports cache counters.
func SetDebugMode(enabled bool) {
	debugMode.Store(enabled)
}

// DebugMode reports whether debug diagnostics are enabled.
func DebugMode() bool {
	return debugMode.Load()
}
