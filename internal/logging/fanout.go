package logging

import (
	"context"
	"errors"
	"log/slog"
)

// fanout sends each record to every handler enabled for its level.
type fanout []slog.Handler

// Fanout combines handlers into one. Nil handlers are skipped, so an optional
// journal handler can be passed as is; a single remaining handler is returned
// unwrapped.
func Fanout(handlers ...slog.Handler) slog.Handler {
	var f fanout
	for _, h := range handlers {
		if h != nil {
			f = append(f, h)
		}
	}
	if len(f) == 1 {
		return f[0]
	}
	return f
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers r to every enabled handler, even after one fails, and
// joins the errors. A journal outage never hides a record from the console.
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
