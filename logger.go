package lantern

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the active logger. Accessed atomically so SetLogger can be
// called while the audio fade timer is logging from its own goroutine.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger used by lantern. By default nothing is
// logged. Pass nil to restore the silent default.
//
// Levels used:
//   - Debug: per-frame stats (debug mode), asset probe failures
//   - Info: loop start/stop, audio backend selection
//   - Warn: non-fatal misuse (unknown channel or asset, unsupported composite mode)
//   - Error: script faults, decode failures
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. The script sub-package shares it.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
