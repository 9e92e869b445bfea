package imrender

import (
	"log/slog"

	"github.com/gogpu/imrender/atlas"
	"github.com/gogpu/imrender/color"
	"github.com/gogpu/imrender/gpu"
	"github.com/gogpu/imrender/internal/logging"
	"github.com/gogpu/imrender/text"
)

// logger stores the active logger. Accessed atomically so that SetLogger
// can be called concurrently with logging from any goroutine.
var logger logging.Holder

// SetLogger configures the logger for imrender and all its sub-packages.
// By default, imrender produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by imrender:
//   - [slog.LevelDebug]: frame statistics, evictions, draws outside a frame
//   - [slog.LevelInfo]: lifecycle events (program compiled, service started)
//   - [slog.LevelWarn]: degraded resources (missing font, unknown color space)
//
// Example:
//
//	imrender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	l = logger.Load()
	text.SetLogger(l)
	atlas.SetLogger(l)
	color.SetLogger(l)
	gpu.SetLogger(l)
}

// Logger returns the current logger used by imrender.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logger.Load()
}
