// Package text is the glyph service behind imrender's text drawing.
//
// A Service owns one worker goroutine. Callers submit requests (metrics,
// measurement, line wrapping, glyph lookup) from any goroutine and get a
// Future back immediately; the worker rasterizes glyphs through
// golang.org/x/image and fulfills each Future exactly once.
//
//	svc := text.NewService(text.Config{FontDir: "/usr/share/fonts"})
//	defer svc.Close()
//
//	lines, err := svc.TextLines("hello world", 120, text.FontInfo{Family: "Go", Size: 14}).Get()
//
// Glyphs are immutable once created and may be shared between goroutines.
package text

import (
	"log/slog"

	"github.com/gogpu/imrender/internal/logging"
)

var logger logging.Holder

// SetLogger sets the package logger. imrender.SetLogger calls this.
func SetLogger(l *slog.Logger) { logger.Store(l) }
