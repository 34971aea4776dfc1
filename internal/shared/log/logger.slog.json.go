package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joshuarp/taskguard-api/internal/shared/config"
)

func NewJSONLogger(cfg config.ConfigProvider) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg config.ConfigProvider) *slog.Logger {
	options := &slog.HandlerOptions{
		Level: parseLevel(cfg.GetString("logging.level")),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, attr.Value.Time().UTC().Format(time.RFC3339))
			}
			return attr
		},
	}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.GetString("logging.format")), "text") {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}

	logger := slog.New(handler)
	if service := strings.TrimSpace(cfg.GetString("logging.service")); service != "" {
		logger = logger.With("service", service)
	}
	return logger
}

func parseLevel(level string) slog.Level {
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
