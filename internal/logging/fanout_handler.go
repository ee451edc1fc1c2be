package logging

import (
	"context"
	"log/slog"
)

// teeHandler writes each record to every handler that accepts its level.
type teeHandler []slog.Handler

func (h teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range h {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(handler slog.Handler) slog.Handler { return handler.WithAttrs(attrs) })
}

func (h teeHandler) WithGroup(name string) slog.Handler {
	return h.each(func(handler slog.Handler) slog.Handler { return handler.WithGroup(name) })
}

func (h teeHandler) each(fn func(slog.Handler) slog.Handler) teeHandler {
	next := make(teeHandler, len(h))
	for i, handler := range h {
		next[i] = fn(handler)
	}
	return next
}

// TeeLogger returns a logger that writes to base and to every extra handler.
// The daemon uses it to add the diagnostic debug log next to its main log.
func TeeLogger(base *slog.Logger, extra ...slog.Handler) *slog.Logger {
	handlers := make(teeHandler, 0, len(extra)+1)
	if base != nil {
		handlers = append(handlers, base.Handler())
	}
	for _, handler := range extra {
		if handler != nil {
			handlers = append(handlers, handler)
		}
	}
	switch len(handlers) {
	case 0:
		return NewNop()
	case 1:
		return slog.New(handlers[0])
	default:
		return slog.New(handlers)
	}
}
