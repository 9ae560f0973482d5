// Package logging builds the slog handlers used by framedoc and the
// component-tagged loggers handed to renderers.
package logging

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"git.home.luguber.info/inful/framedoc/internal/logfields"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New returns a logger writing to w in the given format and level. Records
// pass through counter when it is non-nil.
func New(w io.Writer, format Format, level slog.Level, counter *Counter) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	if counter != nil {
		h = counter.Wrap(h)
	}
	return slog.New(h)
}

// Component tags every record of base with component=name.
func Component(base *slog.Logger, name string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With(logfields.Component(name))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Counter tallies warnings and errors emitted during a run.
type Counter struct {
	warnings atomic.Int64
	errors   atomic.Int64
}

// Warnings returns the number of warning records seen.
func (c *Counter) Warnings() int { return int(c.warnings.Load()) }

// Errors returns the number of error records seen.
func (c *Counter) Errors() int { return int(c.errors.Load()) }

// Reset zeroes both counters; the watch and daemon commands call it between builds.
func (c *Counter) Reset() {
	c.warnings.Store(0)
	c.errors.Store(0)
}

// Wrap returns a handler that counts records before delegating to next.
func (c *Counter) Wrap(next slog.Handler) slog.Handler {
	return &countingHandler{next: next, counter: c}
}

type countingHandler struct {
	next    slog.Handler
	counter *Counter
}

func (h *countingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// Warnings and errors are always counted even if the sink filters them.
	return level >= slog.LevelWarn || h.next.Enabled(ctx, level)
}

func (h *countingHandler) Handle(ctx context.Context, r slog.Record) error {
	switch {
	case r.Level >= slog.LevelError:
		h.counter.errors.Add(1)
	case r.Level >= slog.LevelWarn:
		h.counter.warnings.Add(1)
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *countingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &countingHandler{next: h.next.WithAttrs(attrs), counter: h.counter}
}

func (h *countingHandler) WithGroup(name string) slog.Handler {
	return &countingHandler{next: h.next.WithGroup(name), counter: h.counter}
}
