package logging

import (
	"context"
	"log/slog"
)

// sessionContextHandler adds the session ID carried by the record's context
// unless the logger already has one bound through With.
type sessionContextHandler struct {
	inner slog.Handler
	bound bool
}

func (h *sessionContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *sessionContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if !h.bound {
		if id, ok := SessionIDFromContext(ctx); ok && !recordHasAttr(record, FieldSessionID) {
			record = record.Clone()
			record.AddAttrs(slog.String(FieldSessionID, id))
		}
	}
	return h.inner.Handle(ctx, record)
}

func (h *sessionContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := h.bound
	for _, attr := range attrs {
		if attr.Key == FieldSessionID {
			bound = true
		}
	}
	return &sessionContextHandler{inner: h.inner.WithAttrs(attrs), bound: bound}
}

func (h *sessionContextHandler) WithGroup(name string) slog.Handler {
	return &sessionContextHandler{inner: h.inner.WithGroup(name), bound: h.bound}
}

func recordHasAttr(record slog.Record, key string) bool {
	found := false
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}
