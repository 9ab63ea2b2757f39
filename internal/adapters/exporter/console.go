package exporter

import (
	"fmt"
	"io"

	"telegram-gateway-bot/internal/domain"
	"telegram-gateway-bot/internal/ports"
)

// ConsoleExporter реализует интерфейс Exporter для текстового вывода.
type ConsoleExporter struct{}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter() ports.Exporter {
	return &ConsoleExporter{}
}

// Export построчно выводит список пользователей.
func (e *ConsoleExporter) Export(w io.Writer, users []domain.User) error {
	if _, err := fmt.Fprintln(w, "--- Registered Users ---"); err != nil {
		return err
	}
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users found.")
		return err
	}

	for i, user := range users {
		joined := user.JoinedAt.UTC().Format("2006-01-02 15:04:05")
		var err error
		if user.Username != "" {
			_, err = fmt.Fprintf(w, "%d. ID: %d, Username: @%s, Name: %s, Joined: %s\n", i+1, user.ID, user.Username, fullName(user), joined)
		} else {
			_, err = fmt.Fprintf(w, "%d. ID: %d, Name: %s, Joined: %s\n", i+1, user.ID, fullName(user), joined)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
