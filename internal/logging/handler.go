package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler wraps a slog.Handler that can be atomically replaced
// at runtime, so the bootstrap-to-full transition never invalidates a
// *slog.Logger a caller already holds.
type SwappableHandler struct {
	handler atomic.Pointer[slog.Handler]
}

// NewSwappableHandler creates a handler with an initial handler.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	sh := &SwappableHandler{}
	sh.handler.Store(&initial)
	return sh
}

// Swap atomically replaces the underlying handler.
func (sh *SwappableHandler) Swap(newHandler slog.Handler) {
	sh.handler.Store(&newHandler)
}

func (sh *SwappableHandler) current() slog.Handler {
	return *sh.handler.Load()
}

func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

// WithAttrs returns a new SwappableHandler wrapping the current handler
// with attrs added. A later Swap on sh does not reach the returned
// handler.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewSwappableHandler(sh.current().WithAttrs(attrs))
}

// WithGroup returns a new SwappableHandler wrapping the current handler
// with the group opened. A later Swap on sh does not reach the returned
// handler.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	return NewSwappableHandler(sh.current().WithGroup(name))
}
