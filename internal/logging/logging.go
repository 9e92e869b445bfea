// Package logging holds the swappable slog logger shared by imrender's
// sub-packages.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Nop returns a logger that discards everything.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

// Holder stores a logger for concurrent readers. The zero value logs nothing.
type Holder struct {
	p atomic.Pointer[slog.Logger]
}

// Load returns the stored logger, or a no-op logger if none was set.
func (h *Holder) Load() *slog.Logger {
	if l := h.p.Load(); l != nil {
		return l
	}
	return nop
}

// Store replaces the logger. nil restores silence.
func (h *Holder) Store(l *slog.Logger) {
	if l == nil {
		l = nop
	}
	h.p.Store(l)
}

var nop = Nop()
