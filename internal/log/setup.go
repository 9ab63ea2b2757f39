package log

import (
	"io"
	"log/slog"

	"telegram-gateway-bot/internal/pkg/config"
)

// ParseLevel переводит уровень из конфигурации в slog.Level. Неизвестное значение дает info.
func ParseLevel(level string) slog.Level {
	switch level {
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

// New создает логгер с маскировкой токенов по настройкам из конфига.
// secrets вырезаются из всех записей.
func New(cfg config.Logging, w io.Writer, secrets ...string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return NewMaskedLogger(handler, secrets...)
}
