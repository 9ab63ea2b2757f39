package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TGBotAPIAdapter перенаправляет логи go-telegram-bot-api/v5 в slog.
// Ошибки long polling библиотека пишет обычной строкой, поэтому уровень
// определяется по тексту.
type TGBotAPIAdapter struct {
	Logger *slog.Logger
}

// Println реализует метод интерфейса tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Println(v ...interface{}) {
	a.log(strings.TrimSpace(fmt.Sprintln(v...)))
}

// Printf реализует метод интерфейса tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Printf(format string, v ...interface{}) {
	a.log(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (a *TGBotAPIAdapter) log(msg string) {
	a.Logger.Log(context.Background(), libraryLevel(msg), msg, slog.String("source", "tgbotapi"))
}

// libraryLevel: "Failed to get updates, retrying..." → warn, "Endpoint: ..." → debug.
func libraryLevel(msg string) slog.Level {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "fail"), strings.Contains(lower, "error"):
		return slog.LevelWarn
	case strings.HasPrefix(msg, "Endpoint:"), strings.HasPrefix(msg, "Request:"), strings.HasPrefix(msg, "Response:"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
