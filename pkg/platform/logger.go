package platform

import (
	"log/slog"
	"os"
	"strings"
)

// InitLogger builds the process-wide structured logger. Level comes from
// the NETQUOTE_LOG_LEVEL env var (debug, info, warn, error).
func InitLogger() *slog.Logger {
	// JSON handler for production logging
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(GetEnv("NETQUOTE_LOG_LEVEL", "info")),
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
