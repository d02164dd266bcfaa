package webview

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger configures the package's logger.
// Callbacks may log from the event-loop thread, so set it before creating engines.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
