package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/flood-signal-etl/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT with the
// shared logger and installs it as the slog default. The shared logger writes
// to stdout; pass a non-nil w to send records elsewhere, keeping the shared
// level and format rules.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if w == nil {
		return logger
	}
	logger = slog.New(redirect(logger.Handler(), w, cfg.LogFormat))
	slog.SetDefault(logger)
	return logger
}

// redirect rebuilds h on w with the same minimum level.
func redirect(h slog.Handler, w io.Writer, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: minLevel(h)}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func minLevel(h slog.Handler) slog.Level {
	ctx := context.Background()
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if h.Enabled(ctx, lvl) {
			return lvl
		}
	}
	return slog.LevelError
}
