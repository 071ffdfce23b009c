package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

// BatchIDContextKey stores the id shared by all runs of one batch invocation.
const BatchIDContextKey contextKey = "batch_id"

// Config selects level and handler format.
type Config struct {
	Level  string // debug|info|warn|error
	Format string // text|json
}

// New builds a logger writing to w (stderr when nil).
func New(cfg Config, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unsupported log format: %s (use text|json)", cfg.Format)
	}
	return slog.New(&batchIDHandler{Handler: h}), nil
}

// Setup builds a logger and installs it as the slog default.
func Setup(cfg Config, w io.Writer) (*slog.Logger, error) {
	l, err := New(cfg, w)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return l, nil
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// batchIDHandler copies the batch id from the context onto every record.
type batchIDHandler struct {
	slog.Handler
}

func (h *batchIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := BatchID(ctx); id != "" {
		r.AddAttrs(slog.String("batch_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *batchIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &batchIDHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *batchIDHandler) WithGroup(name string) slog.Handler {
	return &batchIDHandler{Handler: h.Handler.WithGroup(name)}
}

// WithBatchID stores id in ctx.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, BatchIDContextKey, id)
}

// BatchID returns the batch id stored in ctx, or "".
func BatchID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(BatchIDContextKey).(string)
	return id
}
