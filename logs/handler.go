package logs

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	SpanKey ctxKey = iota + 1
	AttrsKey
)

type Span string

// WithAttrs returns a context whose log records carry attrs in addition to the span.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if v, ok := ctx.Value(AttrsKey).([]slog.Attr); ok {
		attrs = append(append([]slog.Attr(nil), v...), attrs...)
	}
	return context.WithValue(ctx, AttrsKey, attrs)
}

type Handler struct {
	slog.Handler
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if v := ctx.Value(SpanKey); v != nil {
		record.Add("logs.span", v.(Span))
	}
	if v, ok := ctx.Value(AttrsKey).([]slog.Attr); ok {
		record.AddAttrs(v...)
	}
	return h.Handler.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		Handler: h.Handler.WithAttrs(attrs),
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		Handler: h.Handler.WithGroup(name),
	}
}
