package adpatch

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-logr/logr"
)

// NewLogger returns a logr.Logger writing text to w. Info and
// errors are always written; each level of verbosity enables
// one more level of logr's V.
func NewLogger(w io.Writer, verbosity int) logr.Logger {
	return logr.FromSlogHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.Level(int(slog.LevelWarn) - 4 - verbosity),
	}))
}

// WithLogger stores log in ctx.
func WithLogger(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

// LoggerFrom returns the logr.Logger stored in ctx,
// or one that discards everything.
func LoggerFrom(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
